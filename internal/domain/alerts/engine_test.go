package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_DefaultRules(t *testing.T) {
	engine, err := NewEngine(DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		name string
		in   Input
		want []string
	}{
		{
			name: "healthy stock",
			in:   Input{Stock: 100, ReorderLevel: 10, DaysToExpiry: 30, HasExpiry: true},
			want: nil,
		},
		{
			name: "below reorder band",
			in:   Input{Stock: 12, ReorderLevel: 10},
			want: []string{"reorder_soon"},
		},
		{
			name: "expiring lot",
			in:   Input{Stock: 100, ReorderLevel: 10, DaysToExpiry: 2, HasExpiry: true},
			want: []string{"expiry_imminent"},
		},
		{
			name: "no expiry never triggers expiry rule",
			in:   Input{Stock: 100, ReorderLevel: 10, DaysToExpiry: 0, HasExpiry: false},
			want: nil,
		},
		{
			name: "both at once",
			in:   Input{Stock: 5, ReorderLevel: 10, DaysToExpiry: 1, HasExpiry: true},
			want: []string{"reorder_soon", "expiry_imminent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts, err := engine.Evaluate(tt.in)
			require.NoError(t, err)

			var names []string
			for _, a := range alerts {
				names = append(names, a.Rule)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestNewEngine_RejectsBadRules(t *testing.T) {
	_, err := NewEngine([]Rule{{Name: "broken", Expr: "stock +"}})
	require.Error(t, err)

	_, err = NewEngine([]Rule{{Name: "not-bool", Expr: "stock * 2.0"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be boolean")
}
