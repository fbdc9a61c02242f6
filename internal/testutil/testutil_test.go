package testutil

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAssertHelpers(t *testing.T) {
	AssertEqual(t, 42, 42)
	AssertEqual(t, "Upminster", "Upminster")
	AssertNil(t, nil)
	AssertError(t, errors.New("boom"))
	AssertContains(t, "Aldgate East Underground Station", "Aldgate")
	AssertNotContains(t, "Aldgate East", "Underground")
	AssertTrue(t, 2 > 1)
	AssertFalse(t, 1 == 2)
	AssertLen(t, []int{1, 2, 3}, 3)
	AssertLen(t, []string{}, 0)
	AssertDurationNear(t, 1050*time.Millisecond, time.Second, 100*time.Millisecond)
}

func TestAssertErrorIs(t *testing.T) {
	sentinel := errors.New("sentinel")
	AssertErrorIs(t, fmt.Errorf("wrapped: %w", sentinel), sentinel)
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	AssertTrue(t, c.Now().Equal(start))

	c.Advance(90 * time.Second)
	AssertEqual(t, c.Now().Sub(start), 90*time.Second)
}
