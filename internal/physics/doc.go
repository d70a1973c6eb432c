// Package physics is a small rigid-body world for boxes, spheres and static
// planes.
//
// Bodies are created once and addressed by [Handle]. Each [World.Step]
// runs the same fixed pipeline:
//
//   - gravity is accumulated as an external force
//   - a broad-phase ("naive" or "sap") proposes candidate pairs
//   - the narrow-phase builds contact points (sphere, box and plane pairs)
//   - every contact yields one non-penetration and two friction equations
//   - a SPOOK-stabilised Gauss-Seidel solver runs for at most
//     [Config.Iterations] sweeps or until the update falls below
//     [Config.Tolerance]
//   - velocities are damped and poses integrated semi-implicitly
//   - bodies slower than [Config.SleepSpeedLimit] for
//     [Config.SleepTimeLimit] seconds fall asleep
//
// Stepping never fails. A diverging solve degrades quality but still leaves
// every body with a pose.
//
// # Example
//
//	w, _ := physics.NewWorld(physics.DefaultConfig())
//	ground, _ := w.CreatePlane(geom.Pose{Rotation: mgl64.Vec3{-math.Pi / 2, 0, 0}})
//	ball, _ := w.CreateSphere(geom.At(0, 2, 0), 0.3, 1)
//	for i := 0; i < 60; i++ {
//	    w.Step(1.0 / 60)
//	}
//	pose := w.Pose(ball)
package physics
