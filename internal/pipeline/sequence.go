package pipeline

import (
	"fmt"
	"log"
	"sync"
)

const (
	basePref = 1003
	baseCity = 2003
)

// Sequencer assigns deterministic receipt-notice codes (1003-series
// for prefectures, 2003-series for cities) from the 1-based order in
// which an operator entered jurisdiction sets, not from OCR or
// document order. Every other code family is untouched; this exists
// solely to disambiguate multiple receipt notices within one job.
//
// Tokyo must occupy set #1 whenever it appears at all - elsewhere in
// the set list is a fatal, job-aborting configuration error, enforced
// the first time either Assign method runs.
type Sequencer struct {
	ctx *JobContext

	mu             sync.Mutex
	tokyoChecked   bool
	assignedPref   map[string]string
	assignedCity   map[string]string
}

func NewSequencer(ctx *JobContext) *Sequencer {
	return &Sequencer{
		ctx:          ctx,
		assignedPref: make(map[string]string),
		assignedCity: make(map[string]string),
	}
}

func (s *Sequencer) ensureTokyoRule() error {
	if s.tokyoChecked {
		return nil
	}
	if err := s.ctx.ValidateTokyoConstraint(); err != nil {
		return err
	}
	if idx, ok := s.ctx.SetIndexForPref("東京都"); ok && idx != 1 {
		err := fmt.Errorf("[FATAL] Tokyo must be Set #1 (found at Set #%d)", idx)
		log.Println(err)
		return err
	}
	s.tokyoChecked = true
	return nil
}

// AssignPrefSeq returns the 4-digit receipt-notice code for a
// prefecture, memoized so repeated pages for the same prefecture within
// a job reuse the first assignment (idempotent).
func (s *Sequencer) AssignPrefSeq(prefecture string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureTokyoRule(); err != nil {
		return "", err
	}

	if cached, ok := s.assignedPref[prefecture]; ok {
		return cached, nil
	}

	setIdx, ok := s.ctx.SetIndexForPref(prefecture)
	if !ok {
		return "", fmt.Errorf("unknown prefecture in job sets: %s", prefecture)
	}

	code := fmt.Sprintf("%04d", basePref+(setIdx-1)*10)
	s.assignedPref[prefecture] = code
	log.Printf("[SEQ][PREF] set=%d pref=%s -> %s", setIdx, prefecture, code)
	return code, nil
}

// AssignCitySeq returns the 4-digit receipt-notice code for a city,
// applying the Tokyo-skip rule: when set #1 is Tokyo with no city
// attached, every later set's position shifts down by one before the
// formula runs, since Tokyo never claims a municipal slot.
func (s *Sequencer) AssignCitySeq(prefecture, city string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureTokyoRule(); err != nil {
		return "", err
	}

	cacheKey := prefecture + "_" + city
	if cached, ok := s.assignedCity[cacheKey]; ok {
		return cached, nil
	}

	setIdx, ok := s.ctx.SetIndexForCity(prefecture, city)
	if !ok {
		return "", fmt.Errorf("unknown city in job sets: %s %s", prefecture, city)
	}

	adjustedIdx := setIdx
	if tokyoIdx, ok := s.ctx.SetIndexForPref("東京都"); ok && tokyoIdx == 1 {
		tokyoCity := s.ctx.CityForSet(1)
		if tokyoCity == "" && setIdx > 1 {
			adjustedIdx = setIdx - 1
			log.Printf("[SEQ][CITY] Tokyo-skip applied: set=%d -> adjusted=%d", setIdx, adjustedIdx)
		}
	}

	code := fmt.Sprintf("%04d", baseCity+(adjustedIdx-1)*10)
	s.assignedCity[cacheKey] = code
	log.Printf("[SEQ][CITY] set=%d city=%s %s -> %s", setIdx, prefecture, city, code)
	return code, nil
}

// IsReceiptNotice reports whether a code is a 1003-series or
// 2003-series receipt notice, the only codes the sequencer ever
// touches.
func IsReceiptNotice(code string) bool {
	return IsPrefReceipt(code) || IsCityReceipt(code)
}

func IsPrefReceipt(code string) bool {
	n, ok := parseCode4(code)
	return ok && n >= 1000 && n < 2000 && n%10 == 3
}

func IsCityReceipt(code string) bool {
	n, ok := parseCode4(code)
	return ok && n >= 2000 && n < 3000 && n%10 == 3
}

func parseCode4(code string) (int, bool) {
	if len(code) != 4 {
		return 0, false
	}
	n := 0
	for _, r := range code {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
