//go:build !darwin || ios

package mtbridge

const defaultTeardownPolicy = TeardownDeterministic
