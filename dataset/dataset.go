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
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/sorrel-io/sorrel/base"
)

// Dataset contains preprocessed feedback for recommendation models. Users and
// items are mapped to dense indices in first-seen order.
type Dataset struct {
	UserIndex    *base.Index
	ItemIndex    *base.Index
	UserFeedback [][]int32
	UserRatings  [][]float32
	ItemFeedback [][]int32
	ItemRatings  [][]float32
	// statistics
	numFeedback int
}

// NewMapIndexDataset creates an empty dataset.
func NewMapIndexDataset() *Dataset {
	s := new(Dataset)
	// Create index
	s.UserIndex = base.NewMapIndex()
	s.ItemIndex = base.NewMapIndex()
	// Initialize slices
	s.UserFeedback = make([][]int32, 0)
	s.UserRatings = make([][]float32, 0)
	s.ItemFeedback = make([][]int32, 0)
	s.ItemRatings = make([][]float32, 0)
	return s
}

// AddFeedback inserts a (user, item, value) triple into the dataset. Unknown
// users and items are registered on the fly. Duplicated (user, item) pairs are
// kept in insertion order.
func (dataset *Dataset) AddFeedback(userId, itemId string, value float32) {
	dataset.UserIndex.Add(userId)
	dataset.ItemIndex.Add(itemId)
	userIndex := dataset.UserIndex.ToNumber(userId)
	itemIndex := dataset.ItemIndex.ToNumber(itemId)
	for int(userIndex) >= len(dataset.UserFeedback) {
		dataset.UserFeedback = append(dataset.UserFeedback, make([]int32, 0))
		dataset.UserRatings = append(dataset.UserRatings, make([]float32, 0))
	}
	for int(itemIndex) >= len(dataset.ItemFeedback) {
		dataset.ItemFeedback = append(dataset.ItemFeedback, make([]int32, 0))
		dataset.ItemRatings = append(dataset.ItemRatings, make([]float32, 0))
	}
	dataset.UserFeedback[userIndex] = append(dataset.UserFeedback[userIndex], itemIndex)
	dataset.UserRatings[userIndex] = append(dataset.UserRatings[userIndex], value)
	dataset.ItemFeedback[itemIndex] = append(dataset.ItemFeedback[itemIndex], userIndex)
	dataset.ItemRatings[itemIndex] = append(dataset.ItemRatings[itemIndex], value)
	dataset.numFeedback++
}

// Count returns the number of feedback triples.
func (dataset *Dataset) Count() int {
	if dataset == nil {
		return 0
	}
	return dataset.numFeedback
}

// UserCount returns the number of users.
func (dataset *Dataset) UserCount() int {
	if dataset == nil {
		return 0
	}
	return int(dataset.UserIndex.Len())
}

// ItemCount returns the number of items.
func (dataset *Dataset) ItemCount() int {
	if dataset == nil {
		return 0
	}
	return int(dataset.ItemIndex.Len())
}

// Matrix converts the dataset to a dense user-item matrix. Cells without
// feedback are zero. If a (user, item) pair was observed more than once, the
// latest value wins.
func (dataset *Dataset) Matrix() [][]float32 {
	matrix := base.NewMatrix32(dataset.UserCount(), dataset.ItemCount())
	for userIndex := range dataset.UserFeedback {
		for position, itemIndex := range dataset.UserFeedback[userIndex] {
			matrix[userIndex][itemIndex] = dataset.UserRatings[userIndex][position]
		}
	}
	return matrix
}

// ItemMatrix converts the dataset to dense item vectors over users, the
// transpose of Matrix. The latest value of a duplicated pair wins here too.
func (dataset *Dataset) ItemMatrix() [][]float32 {
	matrix := base.NewMatrix32(dataset.ItemCount(), dataset.UserCount())
	for itemIndex := range dataset.ItemFeedback {
		for position, userIndex := range dataset.ItemFeedback[itemIndex] {
			matrix[itemIndex][userIndex] = dataset.ItemRatings[itemIndex][position]
		}
	}
	return matrix
}

// UserProfiles returns, for each user, the set of items the user interacted
// with.
func (dataset *Dataset) UserProfiles() []mapset.Set[int32] {
	profiles := make([]mapset.Set[int32], dataset.UserCount())
	for userIndex := range profiles {
		profiles[userIndex] = mapset.NewSet(dataset.UserFeedback[userIndex]...)
	}
	return profiles
}
