package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nerdcon-demo/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleCustomer() models.Customer {
	score := 0.12
	return models.Customer{
		ID:                 "cus_1",
		Name:               "Ada Lovelace",
		Type:               "individual",
		Email:              "ada@example.com",
		VerificationStatus: "pending",
		RiskScore:          &score,
		CreatedAt:          "2026-10-01T00:00:00Z",
		Address:            &models.Address{Address1: "1 Main St", City: "Austin", State: "TX", Zip: "78701"},
	}
}

func TestNewStoreIsEmpty(t *testing.T) {
	s := NewStore()
	st := s.State()
	assert.Nil(t, st.Customer)
	assert.Nil(t, st.Paykey)
	assert.Nil(t, st.Charge)
}

func TestStateReturnsIndependentCopies(t *testing.T) {
	s := NewStore()
	s.SetCustomer(sampleCustomer())

	first := s.State()
	second := s.State()
	require.NotSame(t, first.Customer, second.Customer)
	assert.Equal(t, first, second)

	first.Customer.Name = "mutated"
	first.Customer.Address.City = "Nowhere"
	*first.Customer.RiskScore = 0.99
	first.Paykey = &models.Paykey{ID: "pk_x"}

	current := s.State()
	assert.Equal(t, "Ada Lovelace", current.Customer.Name)
	assert.Equal(t, "Austin", current.Customer.Address.City)
	assert.Equal(t, 0.12, *current.Customer.RiskScore)
	assert.Nil(t, current.Paykey)
}

func TestSetDoesNotKeepCallerReference(t *testing.T) {
	s := NewStore()
	charge := models.Charge{ID: "ch_1", Status: "created", StatusHistory: []models.StatusHistory{{Status: "created"}}}
	s.SetCharge(charge)

	charge.StatusHistory[0].Status = "changed"

	assert.Equal(t, "created", s.State().Charge.StatusHistory[0].Status)
}

func TestSlotEventFiresBeforeAggregate(t *testing.T) {
	s := NewStore()
	var order []string
	s.OnCustomer(func(c *models.Customer) { order = append(order, "customer:"+c.ID) })
	s.OnChange(func(st models.State) { order = append(order, "change:"+st.Customer.ID) })

	s.SetCustomer(sampleCustomer())

	assert.Equal(t, []string{"customer:cus_1", "change:cus_1"}, order)
}

func TestListenerCountsAcrossMutations(t *testing.T) {
	s := NewStore()
	counter := 0
	customerEvents, paykeyEvents, changeEvents := 0, 0, 0
	s.OnCustomer(func(*models.Customer) { counter++; customerEvents++ })
	s.OnPaykey(func(*models.Paykey) { counter++; paykeyEvents++ })
	s.OnChange(func(models.State) { counter++; changeEvents++ })

	s.SetCustomer(sampleCustomer())
	s.SetPaykey(models.Paykey{ID: "pk_1", Paykey: "tok", Status: "pending"})
	s.UpdateCustomer(models.CustomerPatch{VerificationStatus: strPtr("verified")})

	assert.Equal(t, 6, counter)
	assert.Equal(t, 2, customerEvents)
	assert.Equal(t, 1, paykeyEvents)
	assert.Equal(t, 3, changeEvents)
}

func TestUpdateCustomerMergesFields(t *testing.T) {
	s := NewStore()
	s.SetCustomer(sampleCustomer())

	score := 0.5
	s.UpdateCustomer(models.CustomerPatch{VerificationStatus: strPtr("review"), RiskScore: &score})

	c := s.State().Customer
	assert.Equal(t, "review", c.VerificationStatus)
	assert.Equal(t, 0.5, *c.RiskScore)
	assert.Equal(t, "Ada Lovelace", c.Name)
	assert.Equal(t, "ada@example.com", c.Email)
}

func TestUpdateChargeOnEmptySlotIsNoop(t *testing.T) {
	s := NewStore()
	events := 0
	s.OnCharge(func(*models.Charge) { events++ })
	s.OnChange(func(models.State) { events++ })

	s.UpdateCharge(models.ChargePatch{Status: strPtr("paid")})

	assert.Nil(t, s.State().Charge)
	assert.Zero(t, events)
}

func TestUpdateCustomerOnEmptySlotIsNoop(t *testing.T) {
	s := NewStore()
	events := 0
	s.OnChange(func(models.State) { events++ })

	s.UpdateCustomer(models.CustomerPatch{Name: strPtr("ghost")})

	assert.Nil(t, s.State().Customer)
	assert.Zero(t, events)
}

func TestUpdateChargeMergesFields(t *testing.T) {
	s := NewStore()
	s.SetCharge(models.Charge{ID: "ch_1", Paykey: "tok", Amount: 10000, Currency: "USD", Status: "created"})

	var emitted *models.Charge
	s.OnCharge(func(c *models.Charge) { emitted = c })
	s.UpdateCharge(models.ChargePatch{Status: strPtr("paid"), CompletedAt: strPtr("2026-10-02")})

	c := s.State().Charge
	assert.Equal(t, "paid", c.Status)
	assert.Equal(t, "2026-10-02", c.CompletedAt)
	assert.Equal(t, int64(10000), c.Amount)
	require.NotNil(t, emitted)
	assert.Equal(t, "paid", emitted.Status)
}

func TestResetTwiceEmitsOncePerCall(t *testing.T) {
	s := NewStore()
	s.SetCustomer(sampleCustomer())
	s.SetCharge(models.Charge{ID: "ch_1"})

	var order []string
	s.OnReset(func() { order = append(order, "reset") })
	s.OnChange(func(st models.State) {
		assert.Equal(t, models.State{}, st)
		order = append(order, "change")
	})

	s.Reset()
	assert.Equal(t, models.State{}, s.State())
	s.Reset()
	assert.Equal(t, models.State{}, s.State())

	assert.Equal(t, []string{"reset", "change", "reset", "change"}, order)
}

func TestPanickingListenerDoesNotAbortMutation(t *testing.T) {
	s := NewStore()
	reached := false
	s.OnCustomer(func(*models.Customer) { panic("listener failure") })
	s.OnChange(func(models.State) { reached = true })

	require.NotPanics(t, func() { s.SetCustomer(sampleCustomer()) })
	assert.True(t, reached)
	assert.Equal(t, "cus_1", s.State().Customer.ID)
}

func TestListenerMayReadState(t *testing.T) {
	s := NewStore()
	var seen string
	s.OnChange(func(models.State) { seen = s.State().Customer.ID })

	s.SetCustomer(sampleCustomer())

	assert.Equal(t, "cus_1", seen)
}

func TestSubscriptionOff(t *testing.T) {
	s := NewStore()
	calls := 0
	sub := s.OnChange(func(models.State) { calls++ })
	s.SetPaykey(models.Paykey{ID: "pk_1"})
	sub.Off()
	s.SetPaykey(models.Paykey{ID: "pk_2"})

	assert.Equal(t, 1, calls)
}

func TestListenerMutationDoesNotLeak(t *testing.T) {
	s := NewStore()
	s.OnCustomer(func(c *models.Customer) {
		c.Name = "mutated"
		c.Address.City = "Nowhere"
	})
	var second *models.Customer
	s.OnCustomer(func(c *models.Customer) { second = c })
	s.OnChange(func(st models.State) { st.Customer.Name = "changed" })
	var aggregate models.State
	s.OnChange(func(st models.State) { aggregate = st })

	s.SetCustomer(sampleCustomer())

	require.NotNil(t, second)
	assert.Equal(t, "Ada Lovelace", second.Name)
	assert.Equal(t, "Austin", second.Address.City)
	assert.Equal(t, "Ada Lovelace", aggregate.Customer.Name)
	assert.Equal(t, "Ada Lovelace", s.State().Customer.Name)
	assert.Equal(t, "Austin", s.State().Customer.Address.City)
}

func TestUpdateIfChecksID(t *testing.T) {
	s := NewStore()
	s.SetCustomer(sampleCustomer())
	s.SetPaykey(models.Paykey{ID: "pk_1", Status: "pending"})
	s.SetCharge(models.Charge{ID: "ch_1", Status: "created"})

	events := 0
	s.OnChange(func(models.State) { events++ })

	assert.False(t, s.UpdateCustomerIf("cus_other", models.CustomerPatch{VerificationStatus: strPtr("verified")}))
	assert.False(t, s.SetPaykeyStatusIf("pk_other", "active"))
	assert.False(t, s.UpdateChargeIf("ch_other", models.ChargePatch{Status: strPtr("paid")}))
	assert.Zero(t, events)

	assert.True(t, s.UpdateCustomerIf("cus_1", models.CustomerPatch{VerificationStatus: strPtr("verified")}))
	assert.True(t, s.SetPaykeyStatusIf("pk_1", "active"))
	assert.True(t, s.UpdateChargeIf("ch_1", models.ChargePatch{Status: strPtr("paid")}))
	assert.Equal(t, 3, events)

	st := s.State()
	assert.Equal(t, "verified", st.Customer.VerificationStatus)
	assert.Equal(t, "active", st.Paykey.Status)
	assert.Equal(t, "paid", st.Charge.Status)
}

func TestUpdateIfOnEmptySlot(t *testing.T) {
	s := NewStore()
	assert.False(t, s.UpdateCustomerIf("cus_1", models.CustomerPatch{}))
	assert.False(t, s.SetPaykeyStatusIf("pk_1", "active"))
	assert.False(t, s.UpdateChargeIf("ch_1", models.ChargePatch{}))
	assert.Equal(t, models.State{}, s.State())
}
