package interaction

// commitOptimistic applies a local delta, attempts the remote commit, and on
// failure applies the exact inverse delta. The caller's revert must undo
// precisely what apply did, nothing more, so a failed commit leaves no
// partial state behind.
func commitOptimistic(apply, revert func(), attempt func() error) error {
	apply()
	if err := attempt(); err != nil {
		revert()
		return err
	}
	return nil
}
