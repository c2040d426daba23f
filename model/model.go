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

package model

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/juju/errors"

	"github.com/sorrel-io/sorrel/base"
	"github.com/sorrel-io/sorrel/dataset"
)

const (
	ModelItemKNN      = "item_knn"
	ModelContentBased = "content_based"
)

// ErrNotFitted reports a Predict call on a model that has not been fitted.
var ErrNotFitted = errors.New("model is not fitted")

// Score is one ranked recommendation for a user.
type Score struct {
	UserId string
	ItemId string
	Score  float32
}

type FitConfig struct {
	Jobs int
}

func NewFitConfig() *FitConfig {
	return &FitConfig{Jobs: 1}
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// Model is the interface shared by recommendation models.
type Model interface {
	SetParams(params Params)
	GetParams() Params
	// Clear cached information in the model.
	Clear()
}

// ItemRecommender ranks unseen items for every user of the train set.
type ItemRecommender interface {
	Model
	// Fit a model with a train set.
	Fit(trainSet *dataset.Dataset, config *FitConfig) error
	// Predict computes recommendation lists for all predictable users. Lists
	// are grouped by ascending user index and sorted by descending score
	// inside each user.
	Predict(jobs int) ([]Score, error)
}

// NewItemRecommender creates an item recommender by name.
func NewItemRecommender(name string, params Params) (ItemRecommender, error) {
	switch name {
	case ModelItemKNN:
		return NewItemKNN(params), nil
	case ModelContentBased:
		return NewContentBased(params), nil
	default:
		return nil, errors.Errorf("unknown model %v", name)
	}
}

// BaseModel must be included by every recommendation model.
type BaseModel struct {
	Params Params
}

func (model *BaseModel) SetParams(params Params) {
	model.Params = params
}

func (model *BaseModel) GetParams() Params {
	return model.Params
}

// BaseItemRecommender carries the indices and flags shared by item rankers.
type BaseItemRecommender struct {
	BaseModel
	UserIndex       *base.Index
	ItemIndex       *base.Index
	UserPredictable *bitset.BitSet
}

// Init remembers the train set indices and flags users owning feedback.
func (baseModel *BaseItemRecommender) Init(trainSet *dataset.Dataset) {
	baseModel.UserIndex = trainSet.UserIndex
	baseModel.ItemIndex = trainSet.ItemIndex
	// set user trained flags
	baseModel.UserPredictable = bitset.New(uint(trainSet.UserCount()))
	for userIndex := int32(0); userIndex < int32(trainSet.UserCount()); userIndex++ {
		if len(trainSet.UserFeedback[userIndex]) > 0 {
			baseModel.UserPredictable.Set(uint(userIndex))
		}
	}
}

// IsUserPredictable returns false if the user has no feedback in the train set.
func (baseModel *BaseItemRecommender) IsUserPredictable(userIndex int32) bool {
	if baseModel.UserIndex == nil || userIndex < 0 || userIndex >= baseModel.UserIndex.Len() {
		return false
	}
	return baseModel.UserPredictable.Test(uint(userIndex))
}

func (baseModel *BaseItemRecommender) Clear() {
	baseModel.UserIndex = nil
	baseModel.ItemIndex = nil
	baseModel.UserPredictable = nil
}

func (baseModel *BaseItemRecommender) checkFitted() error {
	if baseModel.UserIndex == nil {
		return errors.Trace(ErrNotFitted)
	}
	return nil
}
