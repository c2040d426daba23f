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
	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/sorrel-io/sorrel/base"
	"github.com/sorrel-io/sorrel/base/parallel"
	"github.com/sorrel-io/sorrel/dataset"
)

/* Evaluate Item Ranking */

// Metric is used by evaluators in top-n recommendation tasks. Rank lists and
// target sets hold raw item ids so the test set may carry its own indices.
type Metric func(targetSet mapset.Set[string], rankList []string) float32

// Evaluate evaluates rank lists against a test set. Every rank list is
// truncated to each cutoff in ns and each metric is averaged over the users
// owning both test feedback and a rank list. The result holds one row per
// cutoff and one column per metric.
func Evaluate(ranking []Score, testSet *dataset.Dataset, ns []int, nJobs int, scorers ...Metric) [][]float32 {
	// group rank lists by user
	rankLists := make(map[string][]string)
	for _, score := range ranking {
		rankLists[score.UserId] = append(rankLists[score.UserId], score.ItemId)
	}
	partSum := make([][][]float32, nJobs)
	partCount := make([]float32, nJobs)
	for i := 0; i < nJobs; i++ {
		partSum[i] = base.NewMatrix32(len(ns), len(scorers))
	}
	// for all test users
	_ = parallel.Parallel(testSet.UserCount(), nJobs, func(workerId, userIndex int) error {
		rankList := rankLists[testSet.UserIndex.ToName(int32(userIndex))]
		if len(rankList) == 0 {
			return nil
		}
		targetSet := mapset.NewSet[string]()
		for _, itemIndex := range testSet.UserFeedback[userIndex] {
			targetSet.Add(testSet.ItemIndex.ToName(itemIndex))
		}
		if targetSet.Cardinality() == 0 {
			return nil
		}
		partCount[workerId]++
		for i, n := range ns {
			truncated := rankList
			if len(truncated) > n {
				truncated = truncated[:n]
			}
			for j, metric := range scorers {
				partSum[workerId][i][j] += metric(targetSet, truncated)
			}
		}
		return nil
	})
	results := base.NewMatrix32(len(ns), len(scorers))
	count := lo.Sum(partCount)
	if count == 0 {
		return results
	}
	for workerId := 0; workerId < nJobs; workerId++ {
		for i := range partSum[workerId] {
			for j := range partSum[workerId][i] {
				results[i][j] += partSum[workerId][i][j]
			}
		}
	}
	for i := range results {
		for j := range results[i] {
			results[i][j] /= count
		}
	}
	return results
}

// NDCG means Normalized Discounted Cumulative Gain.
func NDCG(targetSet mapset.Set[string], rankList []string) float32 {
	// IDCG = \sum^{|REL|}_{i=1} \frac {1} {\log_2(i+1)}
	idcg := float32(0)
	for i := 0; i < targetSet.Cardinality() && i < len(rankList); i++ {
		idcg += 1.0 / math32.Log2(float32(i)+2.0)
	}
	if idcg == 0 {
		return 0
	}
	// DCG = \sum^{N}_{i=1} \frac {2^{rel_i}-1} {\log_2(i+1)}
	dcg := float32(0)
	for i, itemId := range rankList {
		if targetSet.Contains(itemId) {
			dcg += 1.0 / math32.Log2(float32(i)+2.0)
		}
	}
	return dcg / idcg
}

// Precision is the fraction of relevant items among the recommended items.
//
//	\frac{|relevant documents| \cap |retrieved documents|} {|{retrieved documents}|}
func Precision(targetSet mapset.Set[string], rankList []string) float32 {
	hit := float32(0)
	for _, itemId := range rankList {
		if targetSet.Contains(itemId) {
			hit++
		}
	}
	return hit / float32(len(rankList))
}

// Recall is the fraction of relevant items that have been recommended over the
// total amount of relevant items.
//
//	\frac{|relevant documents| \cap |retrieved documents|} {|{relevant documents}|}
func Recall(targetSet mapset.Set[string], rankList []string) float32 {
	hit := 0
	for _, itemId := range rankList {
		if targetSet.Contains(itemId) {
			hit++
		}
	}
	return float32(hit) / float32(targetSet.Cardinality())
}

// HR means Hit Ratio.
func HR(targetSet mapset.Set[string], rankList []string) float32 {
	for _, itemId := range rankList {
		if targetSet.Contains(itemId) {
			return 1
		}
	}
	return 0
}

// MAP means Mean Average Precision.
// mAP: http://sdsawtelle.github.io/blog/output/mean-average-precision-MAP-for-recommender-systems.html
func MAP(targetSet mapset.Set[string], rankList []string) float32 {
	sumPrecision := float32(0)
	hit := 0
	for i, itemId := range rankList {
		if targetSet.Contains(itemId) {
			hit++
			sumPrecision += float32(hit) / float32(i+1)
		}
	}
	return sumPrecision / float32(targetSet.Cardinality())
}

// MRR means Mean Reciprocal Rank.
//
// The mean reciprocal rank is a statistic measure for evaluating any process
// that produces a list of possible responses to a sample of queries, ordered
// by probability of correctness. The reciprocal rank of a query response is
// the multiplicative inverse of the rank of the first correct answer: 1 for
// first place, 1/2 for second place, 1/3 for third place and so on. The mean
// reciprocal rank is the average of the reciprocal ranks of results for a
// sample of queries Q:
//
//	MRR = \frac{1}{Q} \sum^{|Q|}_{i=1} \frac{1}{rank_i}
func MRR(targetSet mapset.Set[string], rankList []string) float32 {
	for i, itemId := range rankList {
		if targetSet.Contains(itemId) {
			return 1 / float32(i+1)
		}
	}
	return 0
}
