package sender

import (
	"sync"
	"testing"
	"time"
)

func TestFixConfig(t *testing.T) {
	tests := []struct {
		name string
		in   ConfigValues
		want ConfigValues
	}{
		{
			name: "zero values get defaults",
			in:   ConfigValues{},
			want: ConfigValues{MaxBatchSize: DefaultMaxBatchSize, MaxWait: DefaultMaxWait, FlushBurst: 1},
		},
		{
			name: "negative values are cleared",
			in:   ConfigValues{MaxBatchSize: -1, MaxWait: -time.Second, FlushTimeout: -time.Second, FlushRate: -3, FlushBurst: -2},
			want: ConfigValues{MaxBatchSize: DefaultMaxBatchSize, MaxWait: DefaultMaxWait, FlushBurst: 1},
		},
		{
			name: "valid values are kept",
			in:   ConfigValues{MaxBatchSize: 7, MaxWait: time.Second, FlushTimeout: time.Minute, FlushRate: 2.5, FlushBurst: 4},
			want: ConfigValues{MaxBatchSize: 7, MaxWait: time.Second, FlushTimeout: time.Minute, FlushRate: 2.5, FlushBurst: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixConfig(tt.in); got != tt.want {
				t.Errorf("fixConfig(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConstantConfig(t *testing.T) {
	if got := NewConstantConfig(nil).Get(); got != (ConfigValues{}) {
		t.Errorf("nil values: got %+v, want zero values", got)
	}

	values := ConfigValues{MaxBatchSize: 3, MaxWait: time.Millisecond}
	config := NewConstantConfig(&values)
	values.MaxBatchSize = 99
	if got := config.Get().MaxBatchSize; got != 3 {
		t.Errorf("config should copy values, got MaxBatchSize %d", got)
	}
}

func TestDynamicConfig(t *testing.T) {
	config := NewDynamicConfig(&ConfigValues{MaxBatchSize: 10, MaxWait: time.Second})

	config.UpdateBatchSize(20)
	if got := config.Get().MaxBatchSize; got != 20 {
		t.Errorf("MaxBatchSize = %d, want 20", got)
	}

	config.UpdateTiming(time.Millisecond, 2*time.Second)
	got := config.Get()
	if got.MaxWait != time.Millisecond || got.FlushTimeout != 2*time.Second {
		t.Errorf("timing not updated: %+v", got)
	}

	config.UpdateRate(50, 5)
	got = config.Get()
	if got.FlushRate != 50 || got.FlushBurst != 5 {
		t.Errorf("rate not updated: %+v", got)
	}

	config.Update(ConfigValues{MaxBatchSize: 1})
	if got := config.Get(); got != (ConfigValues{MaxBatchSize: 1}) {
		t.Errorf("Update did not replace values: %+v", got)
	}

	if got := NewDynamicConfig(nil).Get(); got != (ConfigValues{}) {
		t.Errorf("nil values: got %+v, want zero values", got)
	}
}

func TestDynamicConfig_Concurrent(t *testing.T) {
	config := NewDynamicConfig(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			config.UpdateBatchSize(n + 1)
		}(i)
		go func() {
			defer wg.Done()
			_ = config.Get()
		}()
	}
	wg.Wait()

	if got := config.Get().MaxBatchSize; got < 1 || got > 10 {
		t.Errorf("MaxBatchSize = %d, want one of the written values", got)
	}
}
