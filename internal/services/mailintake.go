package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"taxdocpipeline/internal/config"
	"taxdocpipeline/internal/pipeline"
)

// MailIntake polls one IMAP mailbox for unseen messages carrying PDF
// attachments and hands each one to the job service as though it had
// been dropped into the local inbox directory. It is a second source
// of FileInputs alongside the upload handler, not a replacement for it.
type MailIntake struct {
	cfg        *config.Config
	jobService *JobService
}

func NewMailIntake(cfg *config.Config, jobService *JobService) *MailIntake {
	return &MailIntake{cfg: cfg, jobService: jobService}
}

// Enabled reports whether enough mailbox configuration is present to
// poll at all.
func (m *MailIntake) Enabled() bool {
	return m.cfg.MailHost != "" && m.cfg.MailUser != "" && m.cfg.MailPassword != ""
}

// Run polls the configured mailbox on cfg.MailPollEvery until ctx is
// canceled. A failed poll is logged and retried on the next tick rather
// than aborting the loop.
func (m *MailIntake) Run(ctx context.Context) {
	if !m.Enabled() {
		log.Println("[MAIL_INTAKE] disabled: MAIL_HOST/MAIL_USER/MAIL_PASSWORD not set")
		return
	}

	ticker := time.NewTicker(m.cfg.MailPollEvery)
	defer ticker.Stop()

	log.Printf("[MAIL_INTAKE] polling %s@%s mailbox %q every %s", m.cfg.MailUser, m.cfg.MailHost, m.cfg.MailMailbox, m.cfg.MailPollEvery)

	for {
		if err := m.poll(ctx); err != nil {
			log.Printf("[MAIL_INTAKE] poll failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *MailIntake) poll(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%s", m.cfg.MailHost, m.cfg.MailPort)
	c, err := client.DialTLS(addr, &tls.Config{ServerName: m.cfg.MailHost})
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer c.Logout()

	if err := c.Login(m.cfg.MailUser, m.cfg.MailPassword); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if _, err := c.Select(m.cfg.MailMailbox, false); err != nil {
		return fmt.Errorf("select %s: %w", m.cfg.MailMailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.Search(criteria)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(uids) == 0 {
		return nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() { done <- c.Fetch(seqSet, items, messages) }()

	var inputs []pipeline.FileInput
	for msg := range messages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		inputs = append(inputs, m.extractAttachments(msg, section)...)
	}
	if err := <-done; err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if len(inputs) == 0 {
		return nil
	}

	job, err := m.jobService.CreateJob(CreateJobInput{Source: "mail"})
	if err != nil {
		return fmt.Errorf("creating mail-sourced job: %w", err)
	}
	log.Printf("[MAIL_INTAKE] job %s created from %d mailbox attachment(s)", job.ID, len(inputs))
	return m.jobService.RunJob(ctx, job.ID, inputs)
}

// extractAttachments parses one fetched message and returns every
// attachment named with a .pdf extension as a FileInput.
func (m *MailIntake) extractAttachments(msg *imap.Message, section *imap.BodySectionName) []pipeline.FileInput {
	if msg == nil {
		return nil
	}
	r := msg.GetBody(section)
	if r == nil {
		return nil
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		log.Printf("[MAIL_INTAKE] malformed message uid=%d: %v", msg.Uid, err)
		return nil
	}

	var inputs []pipeline.FileInput
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[MAIL_INTAKE] error reading part of uid=%d: %v", msg.Uid, err)
			break
		}

		h, ok := p.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, _ := h.Filename()
		if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
			continue
		}
		blob, err := io.ReadAll(p.Body)
		if err != nil {
			log.Printf("[MAIL_INTAKE] error reading attachment %s: %v", filename, err)
			continue
		}
		inputs = append(inputs, pipeline.FileInput{Path: filename, Blob: blob})
	}
	return inputs
}
