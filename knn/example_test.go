package knn_test

import (
	"fmt"

	"github.com/Noofbiz/learnml/knn"
	"github.com/Noofbiz/learnml/points"
	"github.com/Noofbiz/learnml/schedule"
)

func ExampleEngine_Classify() {
	e := knn.NewEngine(knn.WithK(1), knn.WithTrainingData([]*points.Point{
		points.New(0, 0, 0),
		points.New(10, 10, 1),
	}))

	near, _ := e.Classify(points.New(0.1, 0.1, points.Unclassified))
	far, _ := e.Classify(points.New(9.9, 9.9, points.Unclassified))
	fmt.Println(near, far)

	e.SetK(50)
	fmt.Println("k =", e.K())
	// Output:
	// 0 1
	// k = 2
}

func ExampleSequencer() {
	clk := schedule.NewManual()
	e := knn.NewEngine(knn.WithTrainingData([]*points.Point{
		points.New(0, 0, 0),
		points.New(0, 1, 0),
		points.New(5, 5, 1),
	}))
	placement := knn.NewPlacement(e, clk)
	for _, pos := range knn.Positions {
		placement.PlaceModule(pos)
	}
	seq := knn.NewSequencer(e, placement, clk, knn.PointSourceFunc(func([]*points.Point) *points.Point {
		return points.New(0.5, 0.5, points.Unclassified)
	}))

	for seq.Phase() < knn.MaxPhase {
		seq.NextStep()
		fmt.Println(seq.Phase())
	}
	fmt.Println("category", seq.Snapshot().Result)
	// Output:
	// new-point
	// distances
	// k-nearest
	// classified
	// category 0
}
