package bond

import (
	"testing"
	"time"

	"github.com/ofzlab/ofz-planner/pkg/datetime"
)

func date(value string) time.Time {
	return datetime.MustParseDate(value)
}

func TestFutureCoupons(t *testing.T) {
	b := &Bond{
		SecID: "SU26238RMFS4",
		Coupons: []Coupon{
			{PayDate: date("2026-03-01"), Value: 35},
			{PayDate: date("2026-09-01"), Value: 35},
			{PayDate: date("2027-03-01"), Value: 35},
		},
	}

	tests := []struct {
		name string
		from string
		want int
	}{
		{name: "before the whole schedule", from: "2026-01-01", want: 3},
		{name: "on a coupon date includes it", from: "2026-09-01", want: 2},
		{name: "day after a coupon date excludes it", from: "2026-09-02", want: 1},
		{name: "past the schedule", from: "2027-06-01", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.FutureCoupons(date(tt.from))
			if len(got) != tt.want {
				t.Errorf("expected %d coupons, got %d", tt.want, len(got))
			}
			for i := 1; i < len(got); i++ {
				if got[i].PayDate.Before(got[i-1].PayDate) {
					t.Errorf("schedule order not preserved at index %d", i)
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Bond {
		return &Bond{
			SecID:                "SU26238RMFS4",
			FaceValue:            1000,
			MaturityDate:         date("2027-03-01"),
			PurchasePriceWithNKD: 985.50,
			Coupons: []Coupon{
				{PayDate: date("2026-09-01"), Value: 35},
				{PayDate: date("2027-03-01"), Value: 1035},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Bond)
		wantErr bool
	}{
		{name: "valid bond", mutate: func(*Bond) {}, wantErr: false},
		{name: "empty schedule is valid", mutate: func(b *Bond) { b.Coupons = nil }, wantErr: false},
		{name: "zero face value", mutate: func(b *Bond) { b.FaceValue = 0 }, wantErr: true},
		{name: "negative face value", mutate: func(b *Bond) { b.FaceValue = -1000 }, wantErr: true},
		{name: "missing maturity date", mutate: func(b *Bond) { b.MaturityDate = time.Time{} }, wantErr: true},
		{name: "negative purchase price", mutate: func(b *Bond) { b.PurchasePriceWithNKD = -1 }, wantErr: true},
		{name: "zero coupon value", mutate: func(b *Bond) { b.Coupons[0].Value = 0 }, wantErr: true},
		{name: "unsorted schedule", mutate: func(b *Bond) {
			b.Coupons[0].PayDate, b.Coupons[1].PayDate = b.Coupons[1].PayDate, b.Coupons[0].PayDate
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(b)
			err := b.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
