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
	"sort"
	"time"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sorrel-io/sorrel/base"
	"github.com/sorrel-io/sorrel/base/log"
	"github.com/sorrel-io/sorrel/base/parallel"
	"github.com/sorrel-io/sorrel/dataset"
)

// ContentBased recommends items by precomputed item-item similarities, for
// example from item metadata. A candidate is scored by the mean similarity
// between the items of the user profile and the candidate.
type ContentBased struct {
	BaseItemRecommender
	rankLength   int
	similarities []dataset.Similarity
	// fitted state
	Similarity [][]float32
	profiles   []mapset.Set[int32]
}

// NewContentBased creates a content based recommender.
func NewContentBased(params Params) *ContentBased {
	cb := new(ContentBased)
	cb.SetParams(params)
	return cb
}

func (cb *ContentBased) SetParams(params Params) {
	cb.BaseModel.SetParams(params)
	cb.rankLength = params.GetInt(RankLength, 10)
}

// SetSimilarities hands the precomputed similarity triples to the model. Must
// be called before Fit.
func (cb *ContentBased) SetSimilarities(similarities []dataset.Similarity) {
	cb.similarities = similarities
}

func (cb *ContentBased) Clear() {
	cb.BaseItemRecommender.Clear()
	cb.Similarity = nil
	cb.profiles = nil
}

// Fit builds the similarity matrix from the precomputed triples. Triples are
// written in the given direction only, the latest triple of a pair wins and
// NaN scores become zero. Triples naming items absent from the train set are
// skipped.
func (cb *ContentBased) Fit(trainSet *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if cb.similarities == nil {
		return errors.New("content based model requires precomputed similarities")
	}
	cb.Init(trainSet)
	log.Logger().Info("fit content based",
		zap.Int("n_users", trainSet.UserCount()),
		zap.Int("n_items", trainSet.ItemCount()),
		zap.Int("n_feedback", trainSet.Count()),
		zap.Int("n_similarities", len(cb.similarities)),
		zap.Int("n_jobs", config.Jobs))
	fitStart := time.Now()
	n := trainSet.ItemCount()
	cb.Similarity = base.NewMatrix32(n, n)
	unknown := 0
	for _, similarity := range cb.similarities {
		itemA := cb.ItemIndex.ToNumber(similarity.ItemA)
		itemB := cb.ItemIndex.ToNumber(similarity.ItemB)
		if itemA == base.NotId || itemB == base.NotId {
			unknown++
			continue
		}
		score := similarity.Score
		if math32.IsNaN(score) {
			score = 0
		}
		cb.Similarity[itemA][itemB] = score
	}
	if unknown > 0 {
		log.Logger().Warn("skipped similarities naming unknown items",
			zap.Int("n_similarities", unknown))
	}
	cb.profiles = trainSet.UserProfiles()
	log.Logger().Info("fit content based complete",
		zap.String("fit_time", time.Since(fitStart).String()))
	return nil
}

// Predict ranks unseen items for every user with feedback in the train set.
func (cb *ContentBased) Predict(jobs int) ([]Score, error) {
	if err := cb.checkFitted(); err != nil {
		return nil, errors.Trace(err)
	}
	predictStart := time.Now()
	numUsers := int(cb.UserIndex.Len())
	userScores := make([][]Score, numUsers)
	skipped := atomic.NewInt32(0)
	if err := parallel.Parallel(numUsers, jobs, func(_, jobId int) error {
		userIndex := int32(jobId)
		if !cb.IsUserPredictable(userIndex) {
			skipped.Inc()
			return nil
		}
		userScores[jobId] = cb.predictUser(userIndex)
		return nil
	}); err != nil {
		return nil, errors.Trace(err)
	}
	ranking := make([]Score, 0, numUsers*cb.rankLength)
	for _, scores := range userScores {
		ranking = append(ranking, scores...)
	}
	log.Logger().Info("predict content based complete",
		zap.Int32("n_skipped_users", skipped.Load()),
		zap.Int("n_scores", len(ranking)),
		zap.String("predict_time", time.Since(predictStart).String()))
	return ranking, nil
}

// predictUser scores every unseen item by the mean similarity between the
// items of the user profile and the candidate.
func (cb *ContentBased) predictUser(userIndex int32) []Score {
	seen := cb.profiles[userIndex]
	seenItems := seen.ToSlice()
	sort.Slice(seenItems, func(i, j int) bool { return seenItems[i] < seenItems[j] })
	userId := cb.UserIndex.ToName(userIndex)
	scores := make([]Score, 0, len(cb.Similarity)-len(seenItems))
	for itemIndex := int32(0); itemIndex < int32(len(cb.Similarity)); itemIndex++ {
		if seen.Contains(itemIndex) {
			continue
		}
		sum := float32(0)
		for _, seenItem := range seenItems {
			sum += cb.Similarity[seenItem][itemIndex]
		}
		scores = append(scores, Score{
			UserId: userId,
			ItemId: cb.ItemIndex.ToName(itemIndex),
			Score:  sum / float32(len(seenItems)),
		})
	}
	return truncateRanking(scores, cb.rankLength)
}
