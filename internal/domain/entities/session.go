package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentSession is the escrow-like ledger backing a funded study: a
// researcher-side balance plus per-participant credited amounts. Credits move
// funds from the researcher balance to the participant ledger and can never
// exceed the locked balance. Settlement is one-shot.
type PaymentSession struct {
	ID                string                     `json:"id"`
	StudyID           uuid.UUID                  `json:"studyId"`
	ResearcherAddress string                     `json:"researcherAddress"`
	Balance           decimal.Decimal            `json:"balance"`
	Credits           map[string]decimal.Decimal `json:"credits"`
	Settled           bool                       `json:"settled"`
	TxHash            string                     `json:"txHash,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
}

// SettlementResult is returned by a successful study settlement.
type SettlementResult struct {
	StudyID          uuid.UUID `json:"studyId"`
	TxHash           string    `json:"txHash"`
	ParticipantsPaid int64     `json:"participantsPaid"`
}

// Clone returns a deep copy so callers cannot mutate store internals.
func (s *PaymentSession) Clone() *PaymentSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Credits = make(map[string]decimal.Decimal, len(s.Credits))
	for k, v := range s.Credits {
		cp.Credits[k] = v
	}
	return &cp
}
