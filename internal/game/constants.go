package game

// Tank geometry and material constants for the ring-toss scene.
// Units are engine units; y is up.

const (
	FloorY      = -56.0
	TankWidth   = 18.0
	TankHeight  = 40.0
	TankDepth   = 2.8
	TankCenterY = FloorY + 21.0
	WallThick   = 0.5

	SlopeAngle    = 0.1 * 3.141592653589793
	SlopeLength   = 15.5
	SlopeRadius   = 0.25
	SlopeFriction = 0.05

	RingRadius     = 1.0
	RingTubeRadius = 0.22
	RingMass       = 1.0
	MaxRings       = 20
	RingsPerRow    = 5
	RingSpacing    = 4.0
	RingStartAbove = 15.0
	RingRowDrop    = 3.0

	PegPinRadius       = 0.1
	PegBaseRadius      = 0.8
	PegBaseCenter      = 0.3
	PegBaseHalfHeight  = 0.1
	PegPinTipExtension = 2.05
	PegFriction        = 0.5
	PegRestitution     = 0.2

	WallFriction    = 0.5
	WallRestitution = 0.3
)

// Ring colours cycle in this order.
var ringPalette = []uint32{0xff3333, 0x33ff33, 0x3333ff, 0xffff33, 0xff33ff}

const (
	SeatedEmissive   uint32 = 0x222222
	UnseatedEmissive uint32 = 0x000000
)
