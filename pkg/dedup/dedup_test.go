package dedup

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShouldProcessSuppressesDuplicates(t *testing.T) {
	d := New(time.Minute, 100)

	require.True(t, d.ShouldProcess("msg-1"))
	require.False(t, d.ShouldProcess("msg-1"))
	require.True(t, d.ShouldProcess("msg-2"))
}

func TestExpiredEntriesProcessAgain(t *testing.T) {
	d := New(10*time.Millisecond, 100)

	require.True(t, d.ShouldProcess("msg-1"))
	time.Sleep(20 * time.Millisecond)
	require.True(t, d.ShouldProcess("msg-1"))
}

func TestEmptyIDAlwaysProcessed(t *testing.T) {
	d := New(time.Minute, 100)

	require.True(t, d.ShouldProcess(""))
	require.True(t, d.ShouldProcess(""))
	require.Equal(t, 0, d.Len())
}

func TestEvictionKeepsCapBounded(t *testing.T) {
	d := New(time.Millisecond, 10)

	for i := 0; i < 10; i++ {
		require.True(t, d.ShouldProcess(fmt.Sprintf("old-%d", i)))
	}
	time.Sleep(5 * time.Millisecond)

	// older entries are expired, the overflow insert triggers eviction
	require.True(t, d.ShouldProcess("new"))
	require.LessOrEqual(t, d.Len(), 10)
}

func TestDefaultsApplied(t *testing.T) {
	d := New(0, 0)

	require.True(t, d.ShouldProcess("x"))
	require.False(t, d.ShouldProcess("x"))
}
