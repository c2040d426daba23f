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
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sorrel-io/sorrel/base"
	"github.com/sorrel-io/sorrel/base/heap"
	"github.com/sorrel-io/sorrel/base/log"
	"github.com/sorrel-io/sorrel/base/parallel"
	"github.com/sorrel-io/sorrel/dataset"
)

// ItemKNN recommends items by the similarity between item vectors of the train
// set. The neighborhood of an item is the k most similar other items. Scores
// come from one of two strategies:
//
//   - similar-first: a candidate is scored by the similarities to its
//     neighbors that the user has seen.
//   - score-all: a candidate is scored by the k largest similarities to any
//     item the user has seen.
type ItemKNN struct {
	BaseItemRecommender
	kNeighbors   int
	similarity   string
	similarFirst bool
	rankLength   int
	// fitted state
	Similarity [][]float32
	Neighbors  [][]int32
	profiles   []mapset.Set[int32]
	k          int
}

// NewItemKNN creates an item based KNN recommender.
func NewItemKNN(params Params) *ItemKNN {
	knn := new(ItemKNN)
	knn.SetParams(params)
	return knn
}

func (knn *ItemKNN) SetParams(params Params) {
	knn.BaseModel.SetParams(params)
	knn.kNeighbors = params.GetInt(KNeighbors, 0)
	knn.similarity = params.GetString(Similarity, SimCosine)
	knn.similarFirst = params.GetBool(SimilarFirst, true)
	knn.rankLength = params.GetInt(RankLength, 10)
}

func (knn *ItemKNN) Clear() {
	knn.BaseItemRecommender.Clear()
	knn.Similarity = nil
	knn.Neighbors = nil
	knn.profiles = nil
}

// Fit computes the item-item similarity matrix and the neighbor index.
func (knn *ItemKNN) Fit(trainSet *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	sim, err := NewSim(knn.similarity)
	if err != nil {
		return errors.Trace(err)
	}
	if knn.kNeighbors < 0 {
		return errors.Errorf("invalid neighborhood size %v", knn.kNeighbors)
	}
	knn.Init(trainSet)
	log.Logger().Info("fit item knn",
		zap.String("similarity", knn.similarity),
		zap.Bool("similar_first", knn.similarFirst),
		zap.Int("n_users", trainSet.UserCount()),
		zap.Int("n_items", trainSet.ItemCount()),
		zap.Int("n_feedback", trainSet.Count()),
		zap.Int("n_jobs", config.Jobs))
	n := trainSet.ItemCount()
	// resolve the neighborhood size
	k := knn.kNeighbors
	if k == 0 {
		k = int(math32.Sqrt(float32(n)))
	}
	if k > n-1 {
		log.Logger().Warn("neighborhood larger than the number of other items",
			zap.Int("k_neighbors", k), zap.Int("n_items", n))
		k = n - 1
		if k < 0 {
			k = 0
		}
	}
	knn.k = k
	knn.profiles = trainSet.UserProfiles()
	fitStart := time.Now()
	// compute the similarity matrix, each unordered pair once
	itemVectors := trainSet.ItemMatrix()
	knn.Similarity = base.NewMatrix32(n, n)
	_ = parallel.Parallel(n, config.Jobs, func(_, itemIndex int) error {
		for j := 0; j <= itemIndex; j++ {
			similarity := sim(itemVectors[itemIndex], itemVectors[j])
			if math32.IsNaN(similarity) {
				similarity = 0
			}
			knn.Similarity[itemIndex][j] = similarity
			knn.Similarity[j][itemIndex] = similarity
		}
		return nil
	})
	// build the neighbor index, ties prefer smaller item indices
	knn.Neighbors = make([][]int32, n)
	_ = parallel.Parallel(n, config.Jobs, func(_, itemIndex int) error {
		candidates := make([]int32, 0, n-1)
		for j := 0; j < n; j++ {
			if j != itemIndex {
				candidates = append(candidates, int32(j))
			}
		}
		row := knn.Similarity[itemIndex]
		sort.SliceStable(candidates, func(i, j int) bool {
			return row[candidates[i]] > row[candidates[j]]
		})
		neighbors := make([]int32, k)
		copy(neighbors, candidates[:k])
		knn.Neighbors[itemIndex] = neighbors
		return nil
	})
	log.Logger().Info("fit item knn complete",
		zap.Int("k_neighbors", k),
		zap.String("fit_time", time.Since(fitStart).String()))
	return nil
}

// Predict ranks unseen items for every user with feedback in the train set.
func (knn *ItemKNN) Predict(jobs int) ([]Score, error) {
	if err := knn.checkFitted(); err != nil {
		return nil, errors.Trace(err)
	}
	predictStart := time.Now()
	numUsers := int(knn.UserIndex.Len())
	userScores := make([][]Score, numUsers)
	skipped := atomic.NewInt32(0)
	// the scoring strategy is fixed at construction
	predictUser := knn.predictScoreAll
	if knn.similarFirst {
		predictUser = knn.predictSimilarFirst
	}
	if err := parallel.Parallel(numUsers, jobs, func(_, jobId int) error {
		userIndex := int32(jobId)
		if !knn.IsUserPredictable(userIndex) {
			skipped.Inc()
			return nil
		}
		userScores[jobId] = predictUser(userIndex)
		return nil
	}); err != nil {
		return nil, errors.Trace(err)
	}
	ranking := make([]Score, 0, numUsers*knn.rankLength)
	for _, scores := range userScores {
		ranking = append(ranking, scores...)
	}
	log.Logger().Info("predict item knn complete",
		zap.Int32("n_skipped_users", skipped.Load()),
		zap.Int("n_scores", len(ranking)),
		zap.String("predict_time", time.Since(predictStart).String()))
	return ranking, nil
}

// predictSimilarFirst scores a candidate by the similarities to its neighbors
// seen by the user.
func (knn *ItemKNN) predictSimilarFirst(userIndex int32) []Score {
	seen := knn.profiles[userIndex]
	userId := knn.UserIndex.ToName(userIndex)
	scores := make([]Score, 0, len(knn.Similarity)-seen.Cardinality())
	for itemIndex := int32(0); itemIndex < int32(len(knn.Similarity)); itemIndex++ {
		if seen.Contains(itemIndex) {
			continue
		}
		sum := float32(0)
		for _, neighbor := range knn.Neighbors[itemIndex] {
			if seen.Contains(neighbor) {
				sum += knn.Similarity[itemIndex][neighbor]
			}
		}
		scores = append(scores, Score{UserId: userId, ItemId: knn.ItemIndex.ToName(itemIndex), Score: sum})
	}
	return truncateRanking(scores, knn.rankLength)
}

// predictScoreAll scores a candidate by the k largest similarities to seen
// items.
func (knn *ItemKNN) predictScoreAll(userIndex int32) []Score {
	seen := knn.profiles[userIndex]
	seenItems := seen.ToSlice()
	sort.Slice(seenItems, func(i, j int) bool { return seenItems[i] < seenItems[j] })
	userId := knn.UserIndex.ToName(userIndex)
	scores := make([]Score, 0, len(knn.Similarity)-len(seenItems))
	for itemIndex := int32(0); itemIndex < int32(len(knn.Similarity)); itemIndex++ {
		if seen.Contains(itemIndex) {
			continue
		}
		filter := heap.NewTopKFilter[int32, float32](knn.k)
		for _, seenItem := range seenItems {
			filter.Push(seenItem, knn.Similarity[itemIndex][seenItem])
		}
		_, values := filter.PopAll()
		scores = append(scores, Score{UserId: userId, ItemId: knn.ItemIndex.ToName(itemIndex), Score: lo.Sum(values)})
	}
	return truncateRanking(scores, knn.rankLength)
}

// truncateRanking sorts scores in descending order and keeps the first
// rankLength entries. The sort is stable so ties keep the candidate
// enumeration order.
func truncateRanking(scores []Score, rankLength int) []Score {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if len(scores) > rankLength {
		scores = scores[:rankLength]
	}
	return scores
}
