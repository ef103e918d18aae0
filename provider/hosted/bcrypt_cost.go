//go:build !race

package hosted

func passwordHashCost() int {
	return 14
}
