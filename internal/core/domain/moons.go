package domain

import (
	"fmt"
	"math/rand"
)

// moonNames backs the demonstration endpoints. No cross-request state.
var moonNames = []string{
	"Moon", "Europa", "Titan", "Ganymede", "Milmas", "Hyperion", "Dione", "Kiviuq",
}

// RandomMoon returns a single moon name chosen uniformly at random.
func RandomMoon() string {
	return moonNames[rand.Intn(len(moonNames))]
}

// RandomMoonPair returns two independently chosen moon names; the same
// name may appear twice.
func RandomMoonPair() string {
	return fmt.Sprintf("%s, %s", RandomMoon(), RandomMoon())
}

// IsMoon reports whether name is one of the known moons.
func IsMoon(name string) bool {
	for _, m := range moonNames {
		if m == name {
			return true
		}
	}
	return false
}
