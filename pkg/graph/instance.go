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

// Instance is one instantiation of a Module inside another (its parent).
// Every input of the instantiated module must be driven exactly once via
// DriveInput before validation; outputs are read back via Output.
type Instance struct {
	parent             *Module
	instantiatedModule *Module
	name               string
	drivenInputs       map[string]*Signal
}

// Name returns this instance's name, unique within its parent module.
func (inst *Instance) Name() string { return inst.name }

// Parent returns the module this instance was created in.
func (inst *Instance) Parent() *Module { return inst.parent }

// InstantiatedModule returns the module this instance is a copy of.
func (inst *Instance) InstantiatedModule() *Module { return inst.instantiatedModule }

// DrivenInputs returns the set of (input name -> driving signal) wired so
// far via DriveInput.
func (inst *Instance) DrivenInputs() map[string]*Signal {
	return inst.drivenInputs
}

// DriveInput wires value, a signal belonging to inst's parent module, to the
// instantiated module's input called name. Panics if name does not name an
// input of the instantiated module, if it has already been driven, if value
// belongs to a different module than inst's parent, or if the bit widths
// disagree.
func (inst *Instance) DriveInput(name string, value *Signal) {
	target, ok := inst.instantiatedModule.inputs[name]
	if !ok {
		panic(fmt.Sprintf(
			"instance %q of module %q: %q is not an input of module %q",
			inst.name, inst.parent.name, name, inst.instantiatedModule.name))
	}

	if _, already := inst.drivenInputs[name]; already {
		panic(fmt.Sprintf(
			"instance %q of module %q: input %q already driven", inst.name, inst.parent.name, name))
	}

	if value.module != inst.parent {
		panic(fmt.Sprintf(
			"instance %q of module %q: cannot drive input %q with a signal from module %q",
			inst.name, inst.parent.name, name, value.module.name))
	}

	if value.bitWidth != target.bitWidth {
		panic(fmt.Sprintf(
			"instance %q of module %q: input %q expects %d bits, got %d",
			inst.name, inst.parent.name, name, target.bitWidth, value.bitWidth))
	}

	inst.drivenInputs[name] = value
}

// Output returns a signal, owned by inst's parent module, whose value is the
// instantiated module's named output. Panics if name does not name an output
// of the instantiated module.
func (inst *Instance) Output(name string) *Signal {
	target, ok := inst.instantiatedModule.outputs[name]
	if !ok {
		panic(fmt.Sprintf(
			"instance %q of module %q: %q is not an output of module %q",
			inst.name, inst.parent.name, name, inst.instantiatedModule.name))
	}

	return inst.parent.newSignal(target.bitWidth, &InstanceOutput{Instance: inst, Name: name})
}
