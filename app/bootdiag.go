//go:build !(tinygo && bootdebug)

package app

import "jcboard/hal"

func bootStep(hal.HAL, string) {}
