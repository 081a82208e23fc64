package game

import (
	"math"

	"github.com/ringtoss/backend/internal/physics"
)

// slopeCenter is the midpoint of the ramp near the tank bottom.
var slopeCenter = physics.NewVec3(-TankWidth/7, TankCenterY-15, 0)

// buildTank adds the walls, floor, lid and slope to w.
func buildTank(w *physics.World) {
	bottom := TankCenterY - TankHeight/2
	top := TankCenterY + TankHeight/2
	outer := TankWidth + 2*WallThick

	w.AddStaticBox(physics.NewVec3(0, bottom-WallThick/2, 0), outer, WallThick, WallFriction, WallRestitution)
	w.AddStaticBox(physics.NewVec3(0, top+WallThick/2, 0), outer, WallThick, WallFriction, WallRestitution)
	w.AddStaticBox(physics.NewVec3(-TankWidth/2-WallThick/2, TankCenterY, 0), WallThick, TankHeight, WallFriction, WallRestitution)
	w.AddStaticBox(physics.NewVec3(TankWidth/2+WallThick/2, TankCenterY, 0), WallThick, TankHeight, WallFriction, WallRestitution)

	a, b := SlopeEnds()
	w.AddStaticSegment(a, b, SlopeRadius, SlopeFriction, WallRestitution)
}

// SlopeEnds returns the high west end and the low east end of the ramp.
func SlopeEnds() (physics.Vec3, physics.Vec3) {
	dx := SlopeLength / 2 * math.Cos(SlopeAngle)
	dy := SlopeLength / 2 * math.Sin(SlopeAngle)
	return physics.NewVec3(slopeCenter.X-dx, slopeCenter.Y+dy, 0),
		physics.NewVec3(slopeCenter.X+dx, slopeCenter.Y-dy, 0)
}

// slopeHeightAt is the ramp surface height at x.
func slopeHeightAt(x float64) float64 {
	return slopeCenter.Y - (x-slopeCenter.X)*math.Tan(SlopeAngle) + SlopeRadius
}

// ringStart lays rings out in rows of RingsPerRow, centred in the tank.
func ringStart(i, count int) physics.Vec3 {
	row, col := i/RingsPerRow, i%RingsPerRow
	inRow := count - row*RingsPerRow
	if inRow > RingsPerRow {
		inRow = RingsPerRow
	}
	spacing := RingSpacing
	if inRow > 1 {
		fit := (TankWidth - 2*(RingRadius+RingTubeRadius+0.1)) / float64(inRow-1)
		spacing = math.Min(spacing, fit)
	}
	x := (float64(col) - float64(inRow-1)/2) * spacing
	y := TankCenterY + RingStartAbove - float64(row)*RingRowDrop
	return physics.NewVec3(x, y, 0)
}

func ringShape() physics.RingShape {
	return physics.RingShape{Radius: RingRadius, TubeRadius: RingTubeRadius, Mass: RingMass}
}
