package physics

import "errors"

var (
	ErrVersionMismatch  = errors.New("physics: version mismatch")
	ErrReleased         = errors.New("physics: object already released")
	ErrAlreadyInScene   = errors.New("physics: actor already in a scene")
	ErrNotInScene       = errors.New("physics: actor not in scene")
	ErrSceneLocked      = errors.New("physics: scene is simulating")
	ErrDependentsAlive  = errors.New("physics: dependent objects still alive")
	ErrNotKinematic     = errors.New("physics: actor is not kinematic")
	ErrStaticActor      = errors.New("physics: operation not valid on static actor")
	ErrInvalidGeometry  = errors.New("physics: invalid geometry")
	ErrNoPendingResults = errors.New("physics: no simulation in flight")
	ErrInvalidTimestep  = errors.New("physics: timestep must be positive")
	ErrNoDispatcher     = errors.New("physics: scene needs a dispatcher")
)
