/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package blocks

import (
	"fmt"
	"strings"
)

// Prefix roots every registry path.
const Prefix = "/blocks"

// ValidatePath checks a block path: rooted at "/", slash separated, no
// trailing slash, and every component non-empty and made of ASCII letters,
// digits, '_' or '-'. Paths are case-sensitive.
func ValidatePath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q must start with '/'", ErrInvalidPath, path)
	}
	if path == "/" {
		return fmt.Errorf("%w: %q has no components", ErrInvalidPath, path)
	}
	for i, comp := range strings.Split(path[1:], "/") {
		if comp == "" {
			return fmt.Errorf("%w: %q has an empty component at %d", ErrInvalidPath, path, i)
		}
		for _, c := range comp {
			if !validRune(c) {
				return fmt.Errorf("%w: %q contains %q", ErrInvalidPath, path, c)
			}
		}
	}
	return nil
}

func validRune(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// Canonical validates path and returns it under Prefix.
func Canonical(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	return Prefix + path, nil
}
