// Forumrec - Stakeholder Forum Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/forumrec

// Package recommend implements neighborhood collaborative filtering over the
// actor×group membership matrix of a catalog.
//
// # Strategies
//
// Two strategies share neighbor selection, aggregation and recommendation
// recording through an embedded base:
//
//   - RangeMembership: memberships are real-valued. Similarity is Pearson
//     correlation over co-rated columns, damped for small overlaps, and
//     predictions use the mean-centered weighted average (Typical).
//   - BinaryMembership: memberships are 0/1 flags. Similarity is the overlap
//     coefficient |I∩J| / sqrt(|I|·|J|), and predictions use one of the
//     formulas BinI through BinIV.
//
// # Pipeline
//
// Each strategy moves through a fixed sequence of steps:
//
//	s, _ := recommend.New(recommend.KindRange, cache, recommend.DefaultConfig(), logger)
//	_ = s.PopulateGroupMembership(recommend.NormRow)
//	_ = s.AverageRating(cache.Name(matrixcache.ActorGroup), "averages")
//	_ = s.Similarity(ctx, cache.Name(matrixcache.ActorGroup), "similarity", "averages", 5)
//	_, _ = s.Neighbors("similarity", 10)
//	preds, _ := s.PredictAll(actor, recommend.Typical, cache.Name(matrixcache.ActorGroup), "averages")
//
// Every intermediate matrix is stored by name in the run's store so later
// steps, outputs and experiments can reuse it.
//
// # Thread Safety
//
// Similarity rows are computed in parallel. The neighbor set and pipeline
// state are guarded by a read-write mutex, so predictions may run
// concurrently once neighbors are selected.
package recommend
