package planner

// MotionKind names the shape of a predicted motion.
type MotionKind string

const (
	KindTranslation MotionKind = "translation"
	KindRotation    MotionKind = "rotation"
	KindArc         MotionKind = "arc"
)

// Motion describes how the agent moved during one prediction. It is a closed
// set: Translation, Rotation and Arc are the only implementations, and
// consumers are expected to switch over all three.
type Motion interface {
	Kind() MotionKind
	isMotion()
}

// Translation is straight-line travel along the starting heading. Distance is
// negative when the agent reverses.
type Translation struct {
	Distance float64
}

// Rotation is an in-place turn. The heading change is carried by the
// resulting pose, not by the motion.
type Rotation struct{}

// Arc is travel along a circle of signed Radius; the sign encodes the turning
// direction. Start and Stop are the sweep angles, measured at the arc centre,
// of the agent's position before and after the motion.
type Arc struct {
	Radius float64
	Start  float64
	Stop   float64
}

func (Translation) Kind() MotionKind { return KindTranslation }
func (Rotation) Kind() MotionKind    { return KindRotation }
func (Arc) Kind() MotionKind         { return KindArc }

func (Translation) isMotion() {}
func (Rotation) isMotion()    {}
func (Arc) isMotion()         {}
