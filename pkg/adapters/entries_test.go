package adapters

import (
	"testing"

	"github.com/iwvelando/investment-calculator/internal/projection"
	"github.com/iwvelando/investment-calculator/pkg/format"
)

func TestEntries(t *testing.T) {
	rec := projection.DefaultRecord(projection.Advanced).Set("custom", 1234.5)
	f := format.New(format.DefaultOptions())

	entries := Entries(projection.Advanced, rec, f)
	if len(entries) != rec.Len() {
		t.Fatalf("got %d entries, want %d", len(entries), rec.Len())
	}

	expected := map[int][2]string{
		0: {"Asset Cost ($)", "200,000.00"},
		3: {"Annual Interest Rate (%)", "3.50%"},
		6: {"Years", "10"},
		7: {"custom", "1,234.50"},
	}
	for i, want := range expected {
		if entries[i].Label != want[0] || entries[i].Value != want[1] {
			t.Errorf("entry %d = %+v, want %v", i, entries[i], want)
		}
	}
}

func TestEntriesBasicBaseYield(t *testing.T) {
	f := format.New(format.DefaultOptions())
	tests := []struct {
		name      string
		principal float64
		want      string
	}{
		{"income over principal", 100000, "5.00%"},
		{"no principal", 0, "0.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := projection.BasicRecord(projection.BasicParams{
				Principal:       tt.principal,
				AnnualNetIncome: 5000,
				GrowthRate:      1,
				Years:           3,
			})
			entries := Entries(projection.Basic, rec, f)
			if len(entries) != rec.Len()+1 {
				t.Fatalf("got %d entries, want %d", len(entries), rec.Len()+1)
			}
			last := entries[len(entries)-1]
			if last.Label != projection.BaseYieldLabel || last.Value != tt.want {
				t.Errorf("last entry = %+v, want %s %s", last, projection.BaseYieldLabel, tt.want)
			}
		})
	}
}
