// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNowAdvance(t *testing.T) {
	fake := Fake()
	start := fake.Now()

	fake.Advance(90 * time.Second)

	if got := fake.Now().Sub(start); got != 90*time.Second {
		t.Errorf("advanced by %v, want 90s", got)
	}
}

func TestFakeSleepRecordsAndAdvances(t *testing.T) {
	fake := Fake()
	start := fake.Now()

	fake.Sleep(time.Second)
	fake.Sleep(time.Second)

	slept := fake.Slept()
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != time.Second {
		t.Errorf("Slept() = %v, want [1s 1s]", slept)
	}
	if got := fake.Now().Sub(start); got != 2*time.Second {
		t.Errorf("time advanced by %v, want 2s", got)
	}
}

func TestRealClockNow(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Real().Now() = %v, outside [%v, %v]", got, before, after)
	}
}
