package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipRequest_Resolve(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	price := int64(1234)

	tests := []struct {
		name      string
		req       MembershipRequest
		wantPrice int64
		wantEnd   time.Time
	}{
		{
			name:      "plan defaults",
			req:       MembershipRequest{UserID: 5, Type: "premium", StartDate: start},
			wantPrice: 4999,
			wantEnd:   start.AddDate(0, 1, 0),
		},
		{
			name:      "explicit price and end",
			req:       MembershipRequest{UserID: 5, Type: "VIP", StartDate: start, EndDate: &end, PriceCents: &price},
			wantPrice: 1234,
			wantEnd:   end,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.req.resolve()
			assert.Equal(t, tt.wantPrice, m.PriceCents)
			assert.True(t, tt.wantEnd.Equal(m.EndDate))
		})
	}
}

func TestMembershipRequest_Validate(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	negative := int64(-5)

	tests := []struct {
		name    string
		req     MembershipRequest
		wantErr bool
	}{
		{"valid", MembershipRequest{UserID: 5, Type: "BASIC", StartDate: start}, false},
		{"unknown type", MembershipRequest{UserID: 5, Type: "GOLD", StartDate: start}, true},
		{"end before start", MembershipRequest{UserID: 5, Type: "BASIC", StartDate: start, EndDate: &before}, true},
		{"negative price", MembershipRequest{UserID: 5, Type: "BASIC", StartDate: start, PriceCents: &negative}, true},
		{"missing start", MembershipRequest{UserID: 5, Type: "BASIC"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlansCoverEveryType(t *testing.T) {
	for _, v := range membershipTypes {
		_, ok := FindPlan(Type(v.(string)))
		require.True(t, ok, v)
	}
}

func TestIsActiveAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, (&Membership{Status: StatusActive, EndDate: now.Add(time.Hour)}).IsActiveAt(now))
	assert.False(t, (&Membership{Status: StatusActive, EndDate: now}).IsActiveAt(now))
	assert.False(t, (&Membership{Status: StatusSuspended, EndDate: now.Add(time.Hour)}).IsActiveAt(now))
}
