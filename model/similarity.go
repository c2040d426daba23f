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
	"github.com/juju/errors"
)

// Built-in similarity metric names.
const (
	SimCosine  = "cosine"
	SimMSD     = "msd"
	SimPearson = "pearson"
)

// Sim computes the similarity between two dense vectors. A pair with an
// undefined similarity (zero vector, zero variance) evaluates to 0.
type Sim func(a, b []float32) float32

// NewSim returns the similarity metric with the given name.
func NewSim(name string) (Sim, error) {
	switch name {
	case SimCosine:
		return Cosine, nil
	case SimMSD:
		return MSD, nil
	case SimPearson:
		return Pearson, nil
	default:
		return nil, errors.Errorf("unknown similarity metric `%v`", name)
	}
}

// Cosine computes the cosine similarity between a pair of items (or users).
func Cosine(a, b []float32) float32 {
	m, n, l := float32(0), float32(0), float32(0)
	for i := range a {
		if !math32.IsNaN(a[i]) && !math32.IsNaN(b[i]) {
			m += a[i] * a[i]
			n += b[i] * b[i]
			l += a[i] * b[i]
		}
	}
	if m == 0 || n == 0 {
		return 0
	}
	return l / (math32.Sqrt(m) * math32.Sqrt(n))
}

// MSD computes the Mean Squared Difference similarity between a pair of items (or users).
func MSD(a, b []float32) float32 {
	count := float32(0)
	sum := float32(0)
	for i := range a {
		if !math32.IsNaN(a[i]) && !math32.IsNaN(b[i]) {
			sum += (a[i] - b[i]) * (a[i] - b[i])
			count += 1
		}
	}
	if count == 0 {
		return 0
	}
	return 1.0 / (sum/count + 1)
}

// Pearson computes the Pearson correlation coefficient between a pair of items (or users).
func Pearson(a, b []float32) float32 {
	// Mean of a
	count, sum := float32(0), float32(0)
	for _, rating := range a {
		if !math32.IsNaN(rating) {
			sum += rating
			count += 1
		}
	}
	if count == 0 {
		return 0
	}
	meanA := sum / count
	// Mean of b
	count, sum = float32(0), float32(0)
	for _, rating := range b {
		if !math32.IsNaN(rating) {
			sum += rating
			count += 1
		}
	}
	if count == 0 {
		return 0
	}
	meanB := sum / count
	// Mean-centered cosine
	m, n, l := float32(0), float32(0), float32(0)
	for i := range a {
		if !math32.IsNaN(a[i]) && !math32.IsNaN(b[i]) {
			ratingA := a[i] - meanA
			ratingB := b[i] - meanB
			m += ratingA * ratingA
			n += ratingB * ratingB
			l += ratingA * ratingB
		}
	}
	if m == 0 || n == 0 {
		return 0
	}
	return l / (math32.Sqrt(m) * math32.Sqrt(n))
}
