package util

import (
	"math/rand"
	"time"
)

func Shuffle(in []int) {
	rand.Seed(time.Now().Unix())
	rand.Shuffle(len(in), func(i, j int) {
		in[i], in[j] = in[j], in[i]
	})
}

func Contains(in []string, value string) bool {
	for _, v := range in {
		if v == value {
			return true
		}
	}
	return false
}

func Intersects(left []string, right []string) bool {
	for _, l := range left {
		for _, r := range right {
			if l == r {
				return true
			}
		}
	}
	return false
}
