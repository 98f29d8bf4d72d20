package update

import "fmt"

// State is a position in the update sequence.
type State int

// Update states in the order they are reached. Committed and RolledBack are terminal.
const (
	Idle State = iota
	BackedUp
	Fetched
	Extracted
	Swapped
	MigrationChecked
	Committed
	RolledBack
)

var stateNames = map[State]string{
	Idle:             "idle",
	BackedUp:         "backed up",
	Fetched:          "fetched",
	Extracted:        "extracted",
	Swapped:          "swapped",
	MigrationChecked: "migration checked",
	Committed:        "committed",
	RolledBack:       "rolled back",
}

// stepNames describe the work done to reach a state.
var stepNames = map[State]string{
	BackedUp:         "backing up the installation",
	Fetched:          "downloading the release",
	Extracted:        "unpacking the release",
	Swapped:          "replacing installed files",
	MigrationChecked: "checking config migration",
	Committed:        "removing the backup",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether s ends an update.
func (s State) Terminal() bool {
	return s == Committed || s == RolledBack
}

func (s State) step() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return s.String()
}
