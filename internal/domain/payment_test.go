package domain_test

import (
	"testing"

	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentUpdateStatus(t *testing.T) {
	p := &domain.Payment{TransactionStatus: domain.StatusRCVD}

	require.NoError(t, p.UpdateStatus(domain.StatusACCP))
	assert.Equal(t, domain.StatusACCP, p.TransactionStatus)

	assert.ErrorIs(t, p.UpdateStatus(domain.TransactionStatus("BOGUS")), domain.ErrUnknownStatus)
	assert.Equal(t, domain.StatusACCP, p.TransactionStatus)

	require.NoError(t, p.UpdateStatus(domain.StatusRJCT))

	err := p.UpdateStatus(domain.StatusACSC)
	assert.ErrorIs(t, err, domain.ErrPaymentFinalised)
	assert.Equal(t, domain.StatusRJCT, p.TransactionStatus)
}

func TestPaymentIsRaw(t *testing.T) {
	assert.True(t, (&domain.Payment{RawData: []byte(`<xml/>`)}).IsRaw())
	assert.False(t, (&domain.Payment{Single: &domain.SinglePayment{}}).IsRaw())
}

func TestBulkConstituentStatuses(t *testing.T) {
	bulk := &domain.Payment{
		PaymentType:       domain.PaymentTypeBulk,
		TransactionStatus: domain.StatusACCP,
		Bulk: &domain.BulkPayment{
			Entries: []domain.SinglePayment{
				{TransactionStatus: domain.StatusACCP},
				{TransactionStatus: domain.StatusACSC},
				{TransactionStatus: domain.StatusPDNG},
			},
		},
	}

	statuses := bulk.ConstituentStatuses()
	require.Len(t, statuses, 3)
	assert.True(t, bulk.HasFinalisedConstituent())

	single := &domain.Payment{
		PaymentType:       domain.PaymentTypeSingle,
		TransactionStatus: domain.StatusACCP,
		Single:            &domain.SinglePayment{},
	}
	assert.Equal(t, []domain.TransactionStatus{domain.StatusACCP}, single.ConstituentStatuses())
	assert.False(t, single.HasFinalisedConstituent())
}

func TestBulkCancellationGateAllOpenEntries(t *testing.T) {
	bulk := &domain.Payment{
		PaymentType: domain.PaymentTypeBulk,
		Bulk: &domain.BulkPayment{
			Entries: []domain.SinglePayment{
				{TransactionStatus: domain.StatusACCP},
				{TransactionStatus: domain.StatusPDNG},
			},
		},
	}
	assert.False(t, bulk.HasFinalisedConstituent())
}
