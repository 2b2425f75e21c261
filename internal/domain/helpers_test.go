package domain_test

import "time"

var fixedNow = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
