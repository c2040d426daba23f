// Copyright 2026 sorrel Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
)

// Similarity is a precomputed similarity score between two items, identified
// by their raw ids.
type Similarity struct {
	ItemA string
	ItemB string
	Score float32
}

// LoadDataFromCSV loads a feedback dataset from a CSV file. The file should be:
//
//	<userId 1> <sep> <itemId 1> <sep> <value 1> <sep> <extras>
//	<userId 2> <sep> <itemId 2> <sep> <value 2> <sep> <extras>
//	...
//
// A missing value column means 1. If asBinary is set, every observed value is
// stored as 1. Lines with fewer than two fields are skipped.
func LoadDataFromCSV(path, sep string, asBinary bool) (*Dataset, error) {
	dataset := NewMapIndexDataset()
	// Open file
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Trace(err)
	}
	// Read CSV file
	pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(stat.Size(), "Loading feedback"))
	scanner := bufio.NewScanner(&pbReader)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Split(line, sep)
		// Ignore empty lines
		if len(fields) < 2 {
			continue
		}
		value := float32(1)
		if !asBinary && len(fields) >= 3 {
			v, err := strconv.ParseFloat(fields[2], 32)
			if err != nil {
				return nil, errors.Annotatef(err, "malformed value in %s", line)
			}
			value = float32(v)
		}
		dataset.AddFeedback(fields[0], fields[1], value)
	}
	return dataset, errors.Trace(scanner.Err())
}

// LoadSimilarityFromCSV loads precomputed item-item similarities from a CSV
// file with columns (item_a, item_b, similarity). Triples are returned in file
// order. NaN scores survive parsing, models replace them with zero.
func LoadSimilarityFromCSV(path, sep string) ([]Similarity, error) {
	// Open file
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Trace(err)
	}
	// Read CSV file
	pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(stat.Size(), "Loading similarities"))
	scanner := bufio.NewScanner(&pbReader)
	similarities := make([]Similarity, 0)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Split(line, sep)
		if len(fields) < 3 {
			continue
		}
		score, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return nil, errors.Annotatef(err, "malformed similarity in %s", line)
		}
		similarities = append(similarities, Similarity{ItemA: fields[0], ItemB: fields[1], Score: float32(score)})
	}
	return similarities, errors.Trace(scanner.Err())
}
