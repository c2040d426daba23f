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
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorrel-io/sorrel/dataset"
)

func newContentTrainSet() *dataset.Dataset {
	trainSet := dataset.NewMapIndexDataset()
	trainSet.AddFeedback("u1", "A", 1)
	trainSet.AddFeedback("u2", "B", 1)
	trainSet.AddFeedback("u3", "C", 1)
	return trainSet
}

func TestContentBased(t *testing.T) {
	cb := NewContentBased(nil)
	cb.SetSimilarities([]dataset.Similarity{
		{ItemA: "A", ItemB: "B", Score: 0.8},
		{ItemA: "A", ItemB: "C", Score: 0.2},
	})
	require.NoError(t, cb.Fit(newContentTrainSet(), nil))
	ranking, err := cb.Predict(1)
	require.NoError(t, err)
	require.Len(t, ranking, 6)
	// u1 saw {A}: candidates score by the outgoing similarities of A
	assert.Equal(t, "u1", ranking[0].UserId)
	assert.Equal(t, "B", ranking[0].ItemId)
	assert.InDelta(t, 0.8, ranking[0].Score, evalEpsilon)
	assert.Equal(t, "C", ranking[1].ItemId)
	assert.InDelta(t, 0.2, ranking[1].Score, evalEpsilon)
	// the table is directed, u2 sees no incoming similarity from B
	assert.Equal(t, Score{UserId: "u2", ItemId: "A"}, ranking[2])
	assert.Equal(t, Score{UserId: "u2", ItemId: "C"}, ranking[3])
	assert.Equal(t, Score{UserId: "u3", ItemId: "A"}, ranking[4])
	assert.Equal(t, Score{UserId: "u3", ItemId: "B"}, ranking[5])
}

func TestContentBasedMeanScore(t *testing.T) {
	trainSet := dataset.NewMapIndexDataset()
	trainSet.AddFeedback("u1", "A", 1)
	trainSet.AddFeedback("u1", "B", 1)
	trainSet.AddFeedback("u2", "C", 1)
	cb := NewContentBased(nil)
	cb.SetSimilarities([]dataset.Similarity{
		{ItemA: "A", ItemB: "C", Score: 0.6},
		{ItemA: "B", ItemB: "C", Score: 0.2},
	})
	require.NoError(t, cb.Fit(trainSet, nil))
	ranking, err := cb.Predict(1)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	// (0.6 + 0.2) / 2
	assert.Equal(t, "u1", ranking[0].UserId)
	assert.Equal(t, "C", ranking[0].ItemId)
	assert.InDelta(t, 0.4, ranking[0].Score, evalEpsilon)
}

func TestContentBasedScrubsInput(t *testing.T) {
	trainSet := dataset.NewMapIndexDataset()
	trainSet.AddFeedback("u1", "A", 1)
	trainSet.AddFeedback("u2", "B", 1)
	cb := NewContentBased(nil)
	cb.SetSimilarities([]dataset.Similarity{
		{ItemA: "A", ItemB: "B", Score: math32.NaN()},
		{ItemA: "A", ItemB: "Z", Score: 0.5},
	})
	require.NoError(t, cb.Fit(trainSet, nil))
	assert.Zero(t, cb.Similarity[0][1])
	ranking, err := cb.Predict(1)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Zero(t, ranking[0].Score)
}

func TestContentBasedLastTripleWins(t *testing.T) {
	trainSet := dataset.NewMapIndexDataset()
	trainSet.AddFeedback("u1", "A", 1)
	trainSet.AddFeedback("u2", "B", 1)
	cb := NewContentBased(nil)
	cb.SetSimilarities([]dataset.Similarity{
		{ItemA: "A", ItemB: "B", Score: 0.3},
		{ItemA: "A", ItemB: "B", Score: 0.9},
	})
	require.NoError(t, cb.Fit(trainSet, nil))
	assert.InDelta(t, 0.9, cb.Similarity[0][1], evalEpsilon)
}

func TestContentBasedMissingSimilarities(t *testing.T) {
	cb := NewContentBased(nil)
	assert.Error(t, cb.Fit(newContentTrainSet(), nil))
	// the failed fit leaves the model unusable
	_, err := cb.Predict(1)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestContentBasedNotFitted(t *testing.T) {
	cb := NewContentBased(nil)
	_, err := cb.Predict(1)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestContentBasedRankLength(t *testing.T) {
	trainSet := dataset.NewMapIndexDataset()
	trainSet.AddFeedback("u1", "A", 1)
	trainSet.AddFeedback("u2", "B", 1)
	trainSet.AddFeedback("u2", "C", 1)
	trainSet.AddFeedback("u2", "D", 1)
	cb := NewContentBased(Params{RankLength: 1})
	cb.SetSimilarities([]dataset.Similarity{
		{ItemA: "A", ItemB: "C", Score: 0.7},
	})
	require.NoError(t, cb.Fit(trainSet, nil))
	ranking, err := cb.Predict(1)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "u1", ranking[0].UserId)
	assert.Equal(t, "C", ranking[0].ItemId)
	assert.InDelta(t, 0.7, ranking[0].Score, evalEpsilon)
	assert.Equal(t, "u2", ranking[1].UserId)
	assert.Equal(t, "A", ranking[1].ItemId)
}

func TestContentBasedDeterminism(t *testing.T) {
	trainSet := newDeterminismTrainSet()
	similarities := make([]dataset.Similarity, 0)
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			if i != j && (i*5+j)%3 == 0 {
				similarities = append(similarities, dataset.Similarity{
					ItemA: fmt.Sprintf("i%d", i),
					ItemB: fmt.Sprintf("i%d", j),
					Score: float32(i+j) / 32,
				})
			}
		}
	}
	single := NewContentBased(nil)
	single.SetSimilarities(similarities)
	require.NoError(t, single.Fit(trainSet, NewFitConfig().SetJobs(1)))
	sequential, err := single.Predict(1)
	require.NoError(t, err)
	multi := NewContentBased(nil)
	multi.SetSimilarities(similarities)
	require.NoError(t, multi.Fit(trainSet, NewFitConfig().SetJobs(4)))
	parallelized, err := multi.Predict(4)
	require.NoError(t, err)
	assert.Equal(t, sequential, parallelized)
}
