package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// PathwayService mines ordered per-student experience sequences for common
// pathways, dead-end experiences, and high-lift experience pairs.
type PathwayService struct {
	logger *logging.ChanneledLogger
}

// NewPathwayService creates the pathway analyzer
func NewPathwayService(logger *logging.ChanneledLogger) *PathwayService {
	return &PathwayService{logger: logger}
}

// Compute builds each student's experience-touch sequence (consecutive
// repeats collapsed) and derives the pathway aggregates from them.
func (s *PathwayService) Compute(tenantID string, students []*analytics.Student, events []*analytics.Event, now time.Time) *analytics.PathwayResult {
	eventsByStudent := groupEventsByStudent(events)

	sequences := make(map[string][]string)
	for studentID, studentEvents := range eventsByStudent {
		seq := experienceSequence(studentEvents)
		if len(seq) > 0 {
			sequences[studentID] = seq
		}
	}
	if len(sequences) == 0 {
		return analytics.EmptyPathwayResult()
	}

	result := analytics.EmptyPathwayResult()
	result.TotalStudents = len(sequences)
	result.TopPathways = s.minePathways(sequences)
	result.DeadEnds = s.findDeadEnds(sequences)
	result.PowerCombinations = s.findPowerCombinations(sequences)
	return result
}

// experienceSequence extracts the ordered experience tags a student touched,
// collapsing immediate repeats.
func experienceSequence(events []*analytics.Event) []string {
	var seq []string
	for _, event := range events {
		experience := event.ExperienceID()
		if experience == "" {
			continue
		}
		if len(seq) > 0 && seq[len(seq)-1] == experience {
			continue
		}
		seq = append(seq, experience)
	}
	return seq
}

// minePathways counts 2 and 3 step subsequences. A pathway's completion rate
// is the share of students who, having touched its first step, went on to
// complete the whole sequence in order.
func (s *PathwayService) minePathways(sequences map[string][]string) []analytics.PathwayEntry {
	startedBy := make(map[string]map[string]struct{})
	completedBy := make(map[string]map[string]struct{})
	pathSteps := make(map[string][]string)

	for studentID, seq := range sequences {
		for length := 2; length <= 3; length++ {
			for i := 0; i+length <= len(seq); i++ {
				steps := seq[i : i+length]
				key := strings.Join(steps, ">")
				if completedBy[key] == nil {
					completedBy[key] = make(map[string]struct{})
					pathSteps[key] = append([]string(nil), steps...)
				}
				completedBy[key][studentID] = struct{}{}
			}
		}
	}

	for key, steps := range pathSteps {
		first := steps[0]
		startedBy[key] = make(map[string]struct{})
		for studentID, seq := range sequences {
			for _, experience := range seq {
				if experience == first {
					startedBy[key][studentID] = struct{}{}
					break
				}
			}
		}
	}

	var entries []analytics.PathwayEntry
	for key, completed := range completedBy {
		started := len(startedBy[key])
		if len(completed) < config.PathwayMinStudents || started == 0 {
			continue
		}
		rate := math.Round(float64(len(completed))/float64(started)*1000) / 10
		entries = append(entries, analytics.PathwayEntry{
			Sequence:       pathSteps[key],
			CompletionRate: rate,
			StudentCount:   len(completed),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CompletionRate != entries[j].CompletionRate {
			return entries[i].CompletionRate > entries[j].CompletionRate
		}
		if entries[i].StudentCount != entries[j].StudentCount {
			return entries[i].StudentCount > entries[j].StudentCount
		}
		return strings.Join(entries[i].Sequence, ">") < strings.Join(entries[j].Sequence, ">")
	})
	if len(entries) > config.TopPathwaysLimit {
		entries = entries[:config.TopPathwaysLimit]
	}
	return entries
}

// findDeadEnds flags experiences where a large share of the students who
// touched them stopped progressing there.
func (s *PathwayService) findDeadEnds(sequences map[string][]string) []analytics.DeadEndExperience {
	touched := make(map[string]int)
	endedAt := make(map[string]int)

	for _, seq := range sequences {
		seen := make(map[string]struct{})
		for _, experience := range seq {
			if _, dup := seen[experience]; dup {
				continue
			}
			seen[experience] = struct{}{}
			touched[experience]++
		}
		endedAt[seq[len(seq)-1]]++
	}

	var deadEnds []analytics.DeadEndExperience
	for experience, ended := range endedAt {
		total := touched[experience]
		if total < config.PathwayMinStudents {
			continue
		}
		dropOff := float64(ended) / float64(total)
		if dropOff < config.DeadEndDropOffShare {
			continue
		}
		deadEnds = append(deadEnds, analytics.DeadEndExperience{
			Experience:   experience,
			Title:        analytics.ExperienceTitle(experience),
			DropOffRate:  math.Round(dropOff*1000) / 10,
			StudentCount: total,
		})
	}

	sort.Slice(deadEnds, func(i, j int) bool {
		if deadEnds[i].DropOffRate != deadEnds[j].DropOffRate {
			return deadEnds[i].DropOffRate > deadEnds[j].DropOffRate
		}
		return deadEnds[i].Experience < deadEnds[j].Experience
	})
	return deadEnds
}

// findPowerCombinations looks for adjacent experience pairs whose
// continuation rate beats the tenant-wide baseline by the configured lift.
func (s *PathwayService) findPowerCombinations(sequences map[string][]string) []analytics.PowerCombination {
	type pairStats struct {
		steps     []string
		seen      int
		continued int
	}

	pairs := make(map[string]*pairStats)
	totalPairs := 0
	totalContinued := 0

	for _, seq := range sequences {
		for i := 0; i+1 < len(seq); i++ {
			key := seq[i] + ">" + seq[i+1]
			stats, exists := pairs[key]
			if !exists {
				stats = &pairStats{steps: []string{seq[i], seq[i+1]}}
				pairs[key] = stats
			}
			stats.seen++
			totalPairs++
			if i+2 < len(seq) {
				stats.continued++
				totalContinued++
			}
		}
	}

	if totalPairs == 0 || totalContinued == 0 {
		return []analytics.PowerCombination{}
	}
	baseline := float64(totalContinued) / float64(totalPairs)

	var combos []analytics.PowerCombination
	for _, stats := range pairs {
		if stats.seen < config.PathwayMinStudents {
			continue
		}
		successRate := float64(stats.continued) / float64(stats.seen)
		lift := successRate / baseline
		if lift < config.PowerComboMinLift {
			continue
		}
		combos = append(combos, analytics.PowerCombination{
			Experiences:  stats.steps,
			SuccessRate:  math.Round(successRate*1000) / 10,
			Lift:         math.Round(lift*100) / 100,
			StudentCount: stats.seen,
		})
	}

	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Lift != combos[j].Lift {
			return combos[i].Lift > combos[j].Lift
		}
		return strings.Join(combos[i].Experiences, ">") < strings.Join(combos[j].Experiences, ">")
	})
	if len(combos) > config.PowerCombosLimit {
		combos = combos[:config.PowerCombosLimit]
	}
	return combos
}
