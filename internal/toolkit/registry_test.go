package toolkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/weather"
)

func TestDefinitions(t *testing.T) {
	defs := New().Definitions()

	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
		assert.NotNil(t, d.Run, d.Name)
	}
	assert.Equal(t, []string{
		ToolCurrentTime,
		ToolCurrentWeather,
		ToolWeatherForecast,
		ToolPublicIPGeolocation,
		ToolUpcomingEvents,
		ToolDescribeUser,
	}, names)
}

func TestInvoke(t *testing.T) {
	tk := New(WithClock(fixedClock))
	buf := &events.Buffer{}

	res, err := tk.Invoke(context.Background(), ToolCurrentTime, Call{Sink: buf})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Monday, March 02, 2026")
	assert.Len(t, buf.Events(), 2)

	res, err = tk.Invoke(context.Background(), ToolDescribeUser, Call{User: &User{Name: "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, "User: Ada", res.Text)

	_, err = tk.Invoke(context.Background(), "nope", Call{})
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestInvoke_ForwardsArguments(t *testing.T) {
	fw := &fakeWeather{
		coords: &weather.Coordinates{Name: "Bothell"},
		cond:   &weather.Conditions{Description: "clear sky"},
	}
	tk := New(WithWeather(fw))

	_, err := tk.Invoke(context.Background(), ToolCurrentWeather, Call{Args: map[string]any{"zipcode": float64(98012)}})
	require.NoError(t, err)
	assert.Equal(t, "98012", fw.gotZip)

	_, err = tk.Invoke(context.Background(), ToolWeatherForecast, Call{Args: map[string]any{"zipcode": "98012", "days": "3"}})
	require.NoError(t, err)
	assert.Equal(t, 3, fw.gotDays)
}

func TestStringArg(t *testing.T) {
	args := map[string]any{"s": " 98012 ", "f": float64(98012), "i": 7, "b": true}
	assert.Equal(t, "98012", StringArg(args, "s"))
	assert.Equal(t, "98012", StringArg(args, "f"))
	assert.Equal(t, "7", StringArg(args, "i"))
	assert.Equal(t, "", StringArg(args, "b"))
	assert.Equal(t, "", StringArg(args, "missing"))
	assert.Equal(t, "", StringArg(nil, "s"))
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want int
	}{
		{name: "float", val: float64(3), want: 3},
		{name: "fractional float", val: 2.5, want: 5},
		{name: "int", val: 4, want: 4},
		{name: "string", val: " 2 ", want: 2},
		{name: "bad string", val: "two", want: 5},
		{name: "missing", val: nil, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.val != nil {
				args["days"] = tt.val
			}
			assert.Equal(t, tt.want, IntArg(args, "days", 5))
		})
	}
}
