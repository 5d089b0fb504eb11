// Package knn implements the K-Nearest-Neighbors side of the teaching tool.
//
// Three cooperating pieces live here:
//
//	Engine:    owns the training set and k, classifies query points by
//	           majority vote and exposes the nearest-neighbor subset.
//	Placement: the module dependency chain. Learners "install" the
//	           K selector, the distance calculator and the classifier in
//	           that order; each placement switches the narration text.
//	Sequencer: a five-phase walkthrough (idle, new point, distances,
//	           k-nearest, vote) that can autoplay on a schedule.Scheduler
//	           or be stepped by hand.
//
// Every type guards its state with its own mutex and publishes snapshots to
// subscribers after the lock is released. The Sequencer drives the Engine
// while holding its own lock, so Engine subscribers must not call back into
// the Sequencer synchronously.
//
// Misuse never panics: an empty training set yields no classification, k is
// clamped into range, out-of-order placements and out-of-range steps are
// ignored.
package knn
