// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

const regexpMatchTimeout = time.Second

type regexpKey struct {
	pattern    string
	ignoreCase bool
}

type compiledRegexp struct {
	re  *regexp2.Regexp
	err error
}

var regexpCache sync.Map // regexpKey -> compiledRegexp

// CompileRegexp compiles an ECMAScript pattern, caching the result (including
// a failure) for the lifetime of the process.
func CompileRegexp(pattern string, ignoreCase bool) (*regexp2.Regexp, error) {
	key := regexpKey{pattern, ignoreCase}
	if cached, found := regexpCache.Load(key); found {
		return cached.(compiledRegexp).re, cached.(compiledRegexp).err
	}

	var opts regexp2.RegexOptions = regexp2.ECMAScript
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, opts)
	if err == nil {
		re.MatchTimeout = regexpMatchTimeout
	}

	cached, _ := regexpCache.LoadOrStore(key, compiledRegexp{re, err})
	return cached.(compiledRegexp).re, cached.(compiledRegexp).err
}

// MatchPattern reports whether str matches pattern. Patterns that do not
// compile, or matches that time out, are treated as not applicable and
// reported through ok=false.
func MatchPattern(pattern string, ignoreCase bool, str string) (matched bool, ok bool) {
	re, err := CompileRegexp(pattern, ignoreCase)
	if err != nil {
		return false, false
	}
	matched, err = re.MatchString(str)
	if err != nil {
		return false, false
	}
	return matched, true
}
