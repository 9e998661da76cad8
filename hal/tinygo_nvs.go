//go:build tinygo && baremetal && !(rp2040 || rp2350)

package hal

// newBoardNVS keeps the partition in RAM on targets without a flash driver.
func newBoardNVS() NVS {
	return newLogNVS(func() (nvsMedium, error) { return newRAMMedium(), nil })
}
