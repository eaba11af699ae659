// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package graph

import "fmt"

// Context is a process-local builder session that owns every Module (and,
// transitively, every Signal and Mem) created through it. References handed
// out by a Context remain valid for its entire lifetime; nothing in this
// package ever removes a node once created.
type Context struct {
	modules map[string]*Module
	order   []*Module
}

// NewContext creates an empty builder session.
func NewContext() *Context {
	return &Context{modules: make(map[string]*Module)}
}

// Module creates a new, empty module with the given name. Panics if the
// context already has a module by that name.
func (c *Context) Module(name string) *Module {
	if _, exists := c.modules[name]; exists {
		panic(fmt.Sprintf("context already contains a module called %q", name))
	}

	m := &Module{
		context:       c,
		name:          name,
		inputs:        make(map[string]*Signal),
		outputs:       make(map[string]*Signal),
		registerNames: make(map[string]struct{}),
		memNames:      make(map[string]struct{}),
		instanceNames: make(map[string]struct{}),
	}
	c.modules[name] = m
	c.order = append(c.order, m)

	return m
}

// Modules returns every module created in this context, in creation order.
func (c *Context) Modules() []*Module {
	return c.order
}

// LookupModule returns the module registered under name, if any.
func (c *Context) LookupModule(name string) (*Module, bool) {
	m, ok := c.modules[name]
	return m, ok
}
