// samwrap: a parallel batch driver for samtools pipelines.
// Copyright (c) 2019-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/samwrap/blob/master/LICENSE.txt>.

// Package regions reads, normalizes, and writes BED regions files of
// the kind passed to samtools view -L: tab-separated lines of
// chromosome, start, and end, with inclusive coordinates.
package regions

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/samwrap/utils"
)

// An Interval is a start/end coordinate pair on one chromosome.
type Interval struct {
	Start, End int32
}

// A Set maps chromosome names onto their intervals. Chromosome names
// are interned, so map lookups compare pointers.
type Set struct {
	// Chroms lists the chromosomes in the order they first appear in
	// the source file.
	Chroms []utils.Symbol
	// Intervals maps each chromosome onto its intervals.
	Intervals map[utils.Symbol][]Interval
}

func (set *Set) add(chrom utils.Symbol, interval Interval) {
	if _, ok := set.Intervals[chrom]; !ok {
		set.Chroms = append(set.Chroms, chrom)
	}
	set.Intervals[chrom] = append(set.Intervals[chrom], interval)
}

// NofRegions returns the total number of intervals across all
// chromosomes.
func (set *Set) NofRegions() (n int) {
	for _, intervals := range set.Intervals {
		n += len(intervals)
	}
	return n
}

// ParseBed parses a BED regions file. Comment, track, and browser
// lines are skipped. Only the first three columns are interpreted;
// trailing optional fields are ignored.
func ParseBed(filename string) (*Set, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	set := &Set{Intervals: make(map[utils.Symbol][]Interval)}

	scanner := bufio.NewScanner(bufio.NewReader(file))
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" ||
			strings.HasPrefix(text, "#") ||
			strings.HasPrefix(text, "track") ||
			strings.HasPrefix(text, "browser") {
			continue
		}
		data := strings.Split(text, "\t")
		if len(data) < 3 {
			return nil, fmt.Errorf("%v:%v: fewer than three columns", filename, line)
		}
		start, err := strconv.ParseInt(data[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%v:%v: invalid start position: %v", filename, line, err)
		}
		end, err := strconv.ParseInt(data[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%v:%v: invalid end position: %v", filename, line, err)
		}
		if end < start {
			return nil, fmt.Errorf("%v:%v: end position %v before start position %v", filename, line, end, start)
		}
		set.add(utils.Intern(data[0]), Interval{Start: int32(start), End: int32(end)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// SortByStart sorts a slice of Interval by start position.
func SortByStart(intervals []Interval) {
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
}

type stableIntervalSorter []Interval

func (s stableIntervalSorter) SequentialSort(i, j int) {
	SortByStart(s[i:j])
}

func (s stableIntervalSorter) NewTemp() psort.StableSorter {
	return stableIntervalSorter(make([]Interval, len(s)))
}

func (s stableIntervalSorter) Len() int {
	return len(s)
}

func (s stableIntervalSorter) Less(i, j int) bool {
	return s[i].Start < s[j].Start
}

func (s stableIntervalSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stableIntervalSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// ParallelSortByStart sorts a slice of Interval by start position
// using a parallel stable sort.
func ParallelSortByStart(intervals []Interval) {
	psort.StableSort(stableIntervalSorter(intervals))
}

// Extend makes interval1 larger if it overlaps with or directly abuts
// interval2, by storing max(interval1.End, interval2.End) in
// interval1.End; otherwise, interval1 remains unchanged. Returns true
// if interval1 was extended. interval2.Start >= interval1.Start must
// be true before calling Extend. Coordinates are inclusive, so
// {1, 2} and {3, 4} merge into {1, 4}.
func (interval1 *Interval) Extend(interval2 Interval) bool {
	if interval2.Start > interval1.End+1 {
		return false
	}
	if interval2.End > interval1.End {
		interval1.End = interval2.End
	}
	return true
}

// Flatten merges overlapping intervals into larger intervals.
// intervals must be sorted by start position before calling Flatten.
// The resulting slice is sorted by start position, and no two
// intervals in the result overlap with each other. The result shares
// memory with the intervals argument.
func Flatten(intervals []Interval) []Interval {
	for i, n := 0, len(intervals)-1; i < n; i++ {
		if intervals[i].Extend(intervals[i+1]) {
			n++
			for j := i + 1; j < n; j++ {
				if !intervals[i].Extend(intervals[j]) {
					i++
					intervals[i] = intervals[j]
				}
			}
			return intervals[:i+1]
		}
	}
	return intervals
}

const parallelFlattenGrainSize = 0x1000

// ParallelFlatten merges overlapping intervals into larger intervals,
// using a parallel divide-and-conquer algorithm. intervals must be
// sorted by start position before calling ParallelFlatten. The result
// shares memory with the intervals argument.
func ParallelFlatten(intervals []Interval) []Interval {
	if len(intervals) < parallelFlattenGrainSize {
		return Flatten(intervals)
	}
	half := len(intervals) >> 1
	left, right := intervals[:half], intervals[half:]
	parallel.Do(
		func() { left = ParallelFlatten(left) },
		func() { right = ParallelFlatten(right) },
	)
	for len(right) > 0 && left[len(left)-1].Extend(right[0]) {
		right = right[1:]
	}
	return append(left, right...)
}

// Normalize sorts the intervals of every chromosome by start position
// and merges overlapping intervals, in place.
func (set *Set) Normalize() {
	for chrom, intervals := range set.Intervals {
		ParallelSortByStart(intervals)
		set.Intervals[chrom] = ParallelFlatten(intervals)
	}
}

// WriteBed writes the regions to a three-column BED file, chromosomes
// in their original order.
func (set *Set) WriteBed(filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()
	out := bufio.NewWriter(file)
	var buf []byte
	for _, chrom := range set.Chroms {
		for _, interval := range set.Intervals[chrom] {
			buf = buf[:0]
			buf = append(buf, *chrom...)
			buf = append(buf, '\t')
			buf = strconv.AppendInt(buf, int64(interval.Start), 10)
			buf = append(buf, '\t')
			buf = strconv.AppendInt(buf, int64(interval.End), 10)
			buf = append(buf, '\n')
			if _, err := out.Write(buf); err != nil {
				return err
			}
		}
	}
	return out.Flush()
}
