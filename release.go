// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

//go:build !debug

package sdd

// _DEBUG and _LOGLEVEL are the switches flipped on by the debug build tag
// (see debug.go). Off by default. _LOGLEVEL gates the GC logging in gc.go;
// _DEBUG is not read anywhere else, and the GC history is recorded in both
// builds.
const _DEBUG bool = false
const _LOGLEVEL int = 0
