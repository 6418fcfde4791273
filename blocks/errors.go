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
	"errors"
	"fmt"
)

var (
	// ErrUnknownFactoryPath matches every *UnknownFactoryPathError.
	ErrUnknownFactoryPath = errors.New("pxr(blocks): unknown factory path")
	// ErrRegistration matches every *RegistrationError.
	ErrRegistration = errors.New("pxr(blocks): registration failed")
	// ErrRegistryShutdown is returned by lookups after Shutdown.
	ErrRegistryShutdown = errors.New("pxr(blocks): registry is shut down")

	// ErrInvalidPath reports a malformed block path.
	ErrInvalidPath = errors.New("pxr(blocks): invalid path")
	// ErrInvalidFactory reports a factory that is not a usable function.
	ErrInvalidFactory = errors.New("pxr(blocks): invalid factory")
	// ErrReturnType reports a factory whose result is neither a Block nor a
	// Topology.
	ErrReturnType = errors.New("pxr(blocks): factory must return a Block or a Topology")
	// ErrDuplicatePath reports a second registration for a path. The first
	// registration stays in effect.
	ErrDuplicatePath = errors.New("pxr(blocks): path already registered")
)

// RegistrationError describes a dropped registration. Err is one of
// ErrInvalidPath, ErrInvalidFactory, ErrReturnType, ErrDuplicatePath or
// ErrRegistryShutdown, possibly wrapped with detail.
type RegistrationError struct {
	// Path is the path as passed to Register.
	Path string
	// Site is the file:line of the Register call.
	Site string
	// Err is the reason.
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("pxr(blocks): register %q at %s: %v", e.Path, e.Site, e.Err)
}

// Unwrap returns the reason.
func (e *RegistrationError) Unwrap() error { return e.Err }

// Is matches ErrRegistration.
func (e *RegistrationError) Is(target error) bool { return target == ErrRegistration }

// UnknownFactoryPathError reports a Make for a path with no factory.
type UnknownFactoryPathError struct {
	// Path is the path as passed to Make.
	Path string
}

func (e *UnknownFactoryPathError) Error() string {
	return fmt.Sprintf("pxr(blocks): no factory at %q", e.Path)
}

// Is matches ErrUnknownFactoryPath.
func (e *UnknownFactoryPathError) Is(target error) bool { return target == ErrUnknownFactoryPath }

// MakeError reports a factory that was found but could not be invoked with
// the given arguments, or that returned an error.
type MakeError struct {
	// Path is the path as passed to Make.
	Path string
	// Err is the call error, typically an *object.ConversionError.
	Err error
}

func (e *MakeError) Error() string {
	return fmt.Sprintf("pxr(blocks): make %q: %v", e.Path, e.Err)
}

// Unwrap returns the call error.
func (e *MakeError) Unwrap() error { return e.Err }
