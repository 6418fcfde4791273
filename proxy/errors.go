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

package proxy

import (
	"errors"
	"fmt"
)

var (
	// ErrNullProxy matches every *NullProxyError.
	ErrNullProxy = errors.New("pxr(proxy): null proxy")
	// ErrNoSuchMethod matches every *NoSuchMethodError.
	ErrNoSuchMethod = errors.New("pxr(proxy): no such method")
	// ErrEnvironmentExpired matches every *EnvironmentExpiredError.
	ErrEnvironmentExpired = errors.New("pxr(proxy): environment expired")
	// ErrInvalidHandle is returned for handles that were released or never
	// issued by the environment.
	ErrInvalidHandle = errors.New("pxr(proxy): invalid handle")
	// ErrNotFound is returned by FindProxy for unknown names.
	ErrNotFound = errors.New("pxr(proxy): name not found")
	// ErrUnknownEnvironment is returned by NewEnvironment for names with no
	// registered factory.
	ErrUnknownEnvironment = errors.New("pxr(proxy): unknown environment")
	// ErrDuplicateEnvironment is returned by RegisterEnvironment for a name
	// that already has a factory.
	ErrDuplicateEnvironment = errors.New("pxr(proxy): environment already registered")
)

// NullProxyError reports an operation on the null Proxy.
type NullProxyError struct {
	// Op is the attempted call name or operation.
	Op string
}

func (e *NullProxyError) Error() string {
	return fmt.Sprintf("pxr(proxy): %q on null proxy", e.Op)
}

// Is matches ErrNullProxy.
func (e *NullProxyError) Is(target error) bool { return target == ErrNullProxy }

// NoSuchMethodError reports a call name the receiver does not handle.
type NoSuchMethodError struct {
	// Type is the receiver's type identifier.
	Type string
	// Name is the attempted call name.
	Name string
}

func (e *NoSuchMethodError) Error() string {
	return fmt.Sprintf("pxr(proxy): %s has no method %q", e.Type, e.Name)
}

// Is matches ErrNoSuchMethod.
func (e *NoSuchMethodError) Is(target error) bool { return target == ErrNoSuchMethod }

// EnvironmentExpiredError reports an operation on a closed environment.
type EnvironmentExpiredError struct {
	// Env is the environment name.
	Env string
}

func (e *EnvironmentExpiredError) Error() string {
	return fmt.Sprintf("pxr(proxy): environment %q expired", e.Env)
}

// Is matches ErrEnvironmentExpired.
func (e *EnvironmentExpiredError) Is(target error) bool { return target == ErrEnvironmentExpired }
