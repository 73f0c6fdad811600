// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides a string-keyed map where the order of keys is
maintained (unlike the native Go map).

Schemas list their properties in a meaningful order (completion offers them in
that order) and parsed documents are printed back in source order, so both are
decoded into this map rather than a native one.
*/
package orderedmap
