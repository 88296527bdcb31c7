package seek_test

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/logseek/pkg/seek"
)

// epochExtractor reads lines of the form "T<unix seconds> payload".
var epochExtractor = seek.ExtractorFunc(func(line string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(line, "T")
	if !ok {
		return time.Time{}, false
	}
	digits, _, _ := strings.Cut(rest, " ")
	secs, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
})

type generatedLog struct {
	lines      []string
	timestamps []int64
}

func (g generatedLog) content() string {
	if len(g.lines) == 0 {
		return ""
	}
	return strings.Join(g.lines, "\n") + "\n"
}

func (g generatedLog) targets() []time.Time {
	targets := []time.Time{seek.Beginning, seek.End}
	for _, ts := range g.timestamps {
		targets = append(targets, time.Unix(ts-1, 0), time.Unix(ts, 0), time.Unix(ts+1, 0))
	}
	return targets
}

// generateLog builds a log with non-decreasing timestamps. When noisy is set,
// blank and malformed lines are sprinkled between the timestamped ones.
func generateLog(rng *rand.Rand, n int, noisy bool) (clean, dirty generatedLog) {
	ts := int64(1_600_000_000)
	for i := 0; i < n; i++ {
		if noisy {
			for rng.Intn(3) == 0 {
				var junk string
				switch rng.Intn(3) {
				case 0:
					junk = ""
				case 1:
					junk = strings.Repeat("x", rng.Intn(40))
				default:
					junk = "T" + strings.Repeat("?", rng.Intn(10)) + " truncated"
				}
				dirty.lines = append(dirty.lines, junk)
			}
		}
		ts += int64(rng.Intn(4))
		line := fmt.Sprintf("T%d %s", ts, strings.Repeat("p", rng.Intn(30)))
		clean.lines = append(clean.lines, line)
		clean.timestamps = append(clean.timestamps, ts)
		dirty.lines = append(dirty.lines, line)
		dirty.timestamps = append(dirty.timestamps, ts)
	}
	return clean, dirty
}

func equivalenceSeekers(path string) []seek.Seeker {
	seekers := []seek.Seeker{seek.NewBlockJump(path, epochExtractor)}
	for _, size := range []int64{1, 2, 3, 7, 10, 64} {
		seekers = append(seekers, seek.NewBlockJump(path, epochExtractor, seek.WithBlockSize(size)))
	}
	return seekers
}

func readFrom(t *testing.T, s seek.Seeker, target time.Time) []string {
	t.Helper()
	cursor, err := s.Seek(target)
	if err != nil {
		t.Fatalf("%s: Seek(%v) error = %v", s, target, err)
	}
	defer cursor.Close()
	return readAll(t, cursor)
}

func parseableOnly(lines []string) []string {
	var out []string
	for _, line := range lines {
		if _, ok := epochExtractor.Extract(line); ok {
			out = append(out, line)
		}
	}
	return out
}

func TestBlockJump_MatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 25; round++ {
		_, log := generateLog(rng, rng.Intn(40), true)
		path := writeFile(t, log.content())
		reference := seek.NewSequential(path, epochExtractor)

		for _, target := range log.targets() {
			want := readFrom(t, reference, target)
			for _, s := range equivalenceSeekers(path) {
				got := readFrom(t, s, target)
				if !equalLines(got, want) {
					t.Fatalf("round %d, %s, target %v: got %q, want %q", round, s, target, got, want)
				}
			}
		}
	}
}

func TestSeek_MalformedLinesDoNotMoveTheResult(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for round := 0; round < 25; round++ {
		clean, dirty := generateLog(rng, 1+rng.Intn(30), true)
		cleanPath := writeFile(t, clean.content())
		dirtyPath := writeFile(t, dirty.content())

		for _, target := range clean.targets() {
			want := readFrom(t, seek.NewSequential(cleanPath, epochExtractor), target)
			seekers := append(equivalenceSeekers(dirtyPath), seek.NewSequential(dirtyPath, epochExtractor))
			for _, s := range seekers {
				got := parseableOnly(readFrom(t, s, target))
				if !equalLines(got, want) {
					t.Fatalf("round %d, %s, target %v: got %q, want %q", round, s, target, got, want)
				}
			}
		}
	}
}

func TestSeek_DuplicateTimestampsReturnFirst(t *testing.T) {
	content := "T100 a\nT105 b\nT105 c\nT105 d\nT110 e\n"
	path := writeFile(t, content)

	for _, s := range append(equivalenceSeekers(path), seek.NewSequential(path, epochExtractor)) {
		got := readFrom(t, s, time.Unix(105, 0))
		want := []string{"T105 b", "T105 c", "T105 d", "T110 e"}
		if !equalLines(got, want) {
			t.Errorf("%s: got %q, want %q", s, got, want)
		}
	}
}

// A run of unparseable bytes after a jump point that is longer than the max
// line length breaks the restore mark. This is a configuration contract, not
// something the search recovers from.
func TestBlockJump_GapLongerThanMaxLineLength(t *testing.T) {
	content := "T100 a\n" + strings.Repeat("junk\n", 200) + "T200 b\n"
	path := writeFile(t, content)

	_, err := seek.NewBlockJump(path, epochExtractor,
		seek.WithBlockSize(8),
		seek.WithMaxLineLength(64),
	).Seek(time.Unix(150, 0))
	if !errors.Is(err, seek.ErrMarkInvalid) {
		t.Fatalf("Seek() error = %v, want ErrMarkInvalid", err)
	}
	if errors.Is(err, seek.ErrIO) {
		t.Errorf("Seek() error = %v, mark violations are not i/o failures", err)
	}

	got := readFrom(t, seek.NewBlockJump(path, epochExtractor, seek.WithBlockSize(8)), time.Unix(150, 0))
	if !equalLines(got, []string{"T200 b"}) {
		t.Errorf("default max line length: got %q, want [T200 b]", got)
	}
}

// Lines longer than a third of the max line length still fit: only the bytes
// after the jump lands count against it.
func TestBlockJump_LongLinesAtDefaults(t *testing.T) {
	const lines = 3000
	var b strings.Builder
	for i := 0; i < lines; i++ {
		line := fmt.Sprintf("T%d ", 1_600_000_000+i)
		b.WriteString(line + strings.Repeat("p", 1499-len(line)) + "\n")
	}
	path := writeFile(t, b.String())

	jump := seek.NewBlockJump(path, epochExtractor)
	linear := seek.NewSequential(path, epochExtractor)
	for _, offset := range []int64{0, 100, 699, 700, 701, 1500, 2999} {
		target := time.Unix(1_600_000_000+offset, 0)
		want := readFrom(t, linear, target)
		got := readFrom(t, jump, target)
		if len(got) != lines-int(offset) || !equalLines(got, want) {
			t.Errorf("target +%d: jump read %d lines, linear read %d", offset, len(got), len(want))
		}
	}
}
