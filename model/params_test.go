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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_Copy(t *testing.T) {
	// Create parameters
	a := Params{
		KNeighbors: 1,
		Similarity: "cosine",
	}
	// Create copy
	b := a.Copy()
	b[KNeighbors] = 2
	b[Similarity] = "msd"
	// Check original parameters
	assert.Equal(t, 1, a.GetInt(KNeighbors, -1))
	assert.Equal(t, "cosine", a.GetString(Similarity, ""))
	// Check copy parameters
	assert.Equal(t, 2, b.GetInt(KNeighbors, -1))
	assert.Equal(t, "msd", b.GetString(Similarity, ""))
}

func TestParams_Overwrite(t *testing.T) {
	a := Params{
		KNeighbors: 1,
		Similarity: "cosine",
	}
	b := a.Overwrite(Params{
		KNeighbors: 2,
		RankLength: 5,
	})
	assert.Equal(t, 2, b.GetInt(KNeighbors, -1))
	assert.Equal(t, "cosine", b.GetString(Similarity, ""))
	assert.Equal(t, 5, b.GetInt(RankLength, -1))
	// Check original parameters
	assert.Equal(t, 1, a.GetInt(KNeighbors, -1))
}

func TestParams_GetInt(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, -1, p.GetInt(KNeighbors, -1))
	// Normal case
	p[KNeighbors] = 0
	assert.Equal(t, 0, p.GetInt(KNeighbors, -1))
	// Wrong type case
	p[KNeighbors] = "hello"
	assert.Equal(t, -1, p.GetInt(KNeighbors, -1))
}

func TestParams_GetBool(t *testing.T) {
	p := Params{}
	// Empty case
	assert.True(t, p.GetBool(SimilarFirst, true))
	// Normal case
	p[SimilarFirst] = false
	assert.False(t, p.GetBool(SimilarFirst, true))
	// Wrong type case
	p[SimilarFirst] = 1
	assert.True(t, p.GetBool(SimilarFirst, true))
}

func TestParams_GetFloat32(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, float32(0.1), p.GetFloat32(Similarity, 0.1))
	// Normal case
	p[Similarity] = float32(1.0)
	assert.Equal(t, float32(1.0), p.GetFloat32(Similarity, 0.1))
	// Converted types
	p[Similarity] = 1.0
	assert.Equal(t, float32(1.0), p.GetFloat32(Similarity, 0.1))
	p[Similarity] = 1
	assert.Equal(t, float32(1.0), p.GetFloat32(Similarity, 0.1))
	// Wrong type case
	p[Similarity] = "hello"
	assert.Equal(t, float32(0.1), p.GetFloat32(Similarity, 0.1))
}

func TestParams_GetString(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, "cosine", p.GetString(Similarity, "cosine"))
	// Normal case
	p[Similarity] = "msd"
	assert.Equal(t, "msd", p.GetString(Similarity, "cosine"))
	// Wrong type case
	p[Similarity] = 1
	assert.Equal(t, "cosine", p.GetString(Similarity, "cosine"))
}
