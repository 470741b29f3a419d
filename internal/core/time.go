package core

import "time"

// nowUnix is the real wall clock used to seed MBC3's RTC at cartridge
// construction. It is a plain function, not a stubbable var; cart tests
// inject their own cart.Clock instead.
func nowUnix() int64 { return time.Now().Unix() }
