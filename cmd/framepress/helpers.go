package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// humanizeName derives a display title from a project or file name, e.g.
// "intro-to-go_part2" becomes "Intro To Go Part2".
func humanizeName(name string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(name)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return name
	}
	return cases.Title(language.Und).String(cleaned)
}

// parseIndexList parses frame index arguments of the form "3", "1,4,7",
// or "2-5" (inclusive range), possibly mixed.
func parseIndexList(args []string) ([]int, error) {
	var indices []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if lo, hi, ok := strings.Cut(part, "-"); ok {
				start, err := strconv.Atoi(strings.TrimSpace(lo))
				if err != nil {
					return nil, fmt.Errorf("invalid index range %q", part)
				}
				end, err := strconv.Atoi(strings.TrimSpace(hi))
				if err != nil {
					return nil, fmt.Errorf("invalid index range %q", part)
				}
				if end < start {
					return nil, fmt.Errorf("descending index range %q", part)
				}
				for i := start; i <= end; i++ {
					indices = append(indices, i)
				}
				continue
			}
			value, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid index %q", part)
			}
			indices = append(indices, value)
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no frame indices given")
	}
	return indices, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func formatTimestamp(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
