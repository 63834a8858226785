// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"fmt"
	"time"
)

// Statistics summarizes a sequence of outcomes from a single probe session.
// Unknown outcomes count neither as sent nor as received; an Exited outcome
// only marks the series as terminated.
type Statistics struct {
	Sent     int           `json:"sent"`     // Pong and Timeout outcomes.
	Received int           `json:"received"` // Pong outcomes.
	Unknown  int           `json:"unknown"`
	Exited   bool          `json:"exited"`
	MinRTT   time.Duration `json:"min_rtt"`
	AvgRTT   time.Duration `json:"avg_rtt"`
	MaxRTT   time.Duration `json:"max_rtt"`
}

// Summarize returns the statistics of the specified outcomes.
func Summarize(outcomes []Outcome) Statistics {
	var stats Statistics
	var total time.Duration
	for _, o := range outcomes {
		switch o.Kind() {
		case Pong:
			rtt, _ := o.Duration()
			if stats.Received == 0 || rtt < stats.MinRTT {
				stats.MinRTT = rtt
			}
			if rtt > stats.MaxRTT {
				stats.MaxRTT = rtt
			}
			total += rtt
			stats.Sent++
			stats.Received++
		case Timeout:
			stats.Sent++
		case Unknown:
			stats.Unknown++
		case Exited:
			stats.Exited = true
		}
	}
	if stats.Received > 0 {
		stats.AvgRTT = total / time.Duration(stats.Received)
	}
	return stats
}

// Add returns the statistics updated with one more outcome, for tracking
// statistics of a stream as outcomes trickle in.
func (s Statistics) Add(o Outcome) Statistics {
	more := Summarize([]Outcome{o})
	if more.Received > 0 {
		if s.Received == 0 || more.MinRTT < s.MinRTT {
			s.MinRTT = more.MinRTT
		}
		if more.MaxRTT > s.MaxRTT {
			s.MaxRTT = more.MaxRTT
		}
		s.AvgRTT = (s.AvgRTT*time.Duration(s.Received) + more.AvgRTT) / time.Duration(s.Received+1)
	}
	s.Sent += more.Sent
	s.Received += more.Received
	s.Unknown += more.Unknown
	s.Exited = s.Exited || more.Exited
	return s
}

// LossPercentage returns the percentage of probes without reply, or 0 if no
// probe was sent at all.
func (s Statistics) LossPercentage() float64 {
	if s.Sent == 0 {
		return 0
	}
	return float64(s.Sent-s.Received) * 100 / float64(s.Sent)
}

// Quality returns the verdict about the probed target: Verified if at least
// the specified percentage of the sent probes received replies, otherwise
// Invalid. A series without any sent probes is Invalid.
func (s Statistics) Quality(thresholdPercentage uint) Quality {
	if thresholdPercentage > 100 {
		panic(fmt.Errorf("Statistics: threshold must be a percentage between 0 <= threshold <= 100, got: %d",
			thresholdPercentage))
	}
	if s.Sent == 0 {
		return Invalid
	}
	if s.Received*100 < s.Sent*int(thresholdPercentage) {
		return Invalid
	}
	return Verified
}

// String returns a ping(8)-style summary line.
func (s Statistics) String() string {
	summary := fmt.Sprintf("%d packets transmitted, %d received, %.1f%% packet loss",
		s.Sent, s.Received, s.LossPercentage())
	if s.Received > 0 {
		summary += fmt.Sprintf(", rtt min/avg/max = %.3f/%.3f/%.3f ms",
			ms(s.MinRTT), ms(s.AvgRTT), ms(s.MaxRTT))
	}
	return summary
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
