package object

// Environment holds variable bindings for a single scope: the top-level
// program scope, or a snapshot taken on entry to a method or block body.
type Environment struct {
	store             map[string]Object
	constants         map[string]Object
	self              Object
	block             *Proc
	currentClass      *RubyClass
	currentModule     *RubyModule
	singletonTarget   Object           // Target object for singleton class (class << obj)
	currentMethod     string           // Current method name (for super)
	methodArgs        []Object         // Original method arguments (for super without args)
	definingClass     *RubyClass       // Class where current method is defined
	currentVisibility MethodVisibility // Current visibility for method definitions
	visibilitySet     bool             // Whether visibility was explicitly set
}

// NewEnvironment creates a fresh top-level environment with no bindings.
func NewEnvironment() *Environment {
	return &Environment{
		store:     make(map[string]Object),
		constants: make(map[string]Object),
	}
}

// NewEnclosedEnvironment creates a child scope seeded from a snapshot of
// outer's bindings, the way entering a Ruby block or method body copies the
// enclosing map rather than closing over it by reference. Shared mutable
// values (arrays, hashes, instances) captured in the snapshot remain shared
// because the copy is shallow; plain local variables do not, so assignment
// inside the child never rebinds a name in outer. The child keeps no pointer
// back to outer, which is what makes the copy a snapshot instead of a view.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	for k, v := range outer.store {
		env.store[k] = v
	}
	for k, v := range outer.constants {
		env.constants[k] = v
	}
	env.self = outer.self
	env.block = outer.block
	env.currentClass = outer.currentClass
	env.currentModule = outer.currentModule
	env.singletonTarget = outer.singletonTarget
	env.currentMethod = outer.currentMethod
	env.methodArgs = outer.methodArgs
	env.definingClass = outer.definingClass
	env.currentVisibility = outer.currentVisibility
	env.visibilitySet = outer.visibilitySet
	return env
}

// Get retrieves a variable from the environment.
func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	return obj, ok
}

// Set sets a variable in the environment.
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// SetLocal is an alias for Set; scopes never chain to an outer store, so
// there is no distinction between a local and a looked-up assignment.
func (e *Environment) SetLocal(name string, val Object) Object {
	return e.Set(name, val)
}

// Update is an alias for Set, kept for parity with the lookup-and-rebind
// terminology used by +=/-=/etc.; with snapshot scoping there is no outer
// frame to search, so updating always targets the current scope.
func (e *Environment) Update(name string, val Object) Object {
	return e.Set(name, val)
}

// GetConstant retrieves a constant.
func (e *Environment) GetConstant(name string) (Object, bool) {
	obj, ok := e.constants[name]
	return obj, ok
}

// SetConstant sets a constant.
func (e *Environment) SetConstant(name string, val Object) Object {
	e.constants[name] = val
	return val
}

// Self returns the current self object.
func (e *Environment) Self() Object {
	return e.self
}

// SetSelf sets the self object.
func (e *Environment) SetSelf(self Object) {
	e.self = self
}

// Block returns the current block.
func (e *Environment) Block() *Proc {
	return e.block
}

// SetBlock sets the current block.
func (e *Environment) SetBlock(block *Proc) {
	e.block = block
}

// CurrentClass returns the current class context for method definitions.
func (e *Environment) CurrentClass() *RubyClass {
	return e.currentClass
}

// SetCurrentClass sets the current class context.
func (e *Environment) SetCurrentClass(class *RubyClass) {
	e.currentClass = class
}

// CurrentModule returns the current module context for method definitions.
func (e *Environment) CurrentModule() *RubyModule {
	return e.currentModule
}

// SetCurrentModule sets the current module context.
func (e *Environment) SetCurrentModule(mod *RubyModule) {
	e.currentModule = mod
}

// SingletonTarget returns the singleton target object (for class << obj).
func (e *Environment) SingletonTarget() Object {
	return e.singletonTarget
}

// SetSingletonTarget sets the singleton target object.
func (e *Environment) SetSingletonTarget(obj Object) {
	e.singletonTarget = obj
}

// CurrentMethod returns the current method name (for super calls).
func (e *Environment) CurrentMethod() string {
	return e.currentMethod
}

// SetCurrentMethod sets the current method name.
func (e *Environment) SetCurrentMethod(name string) {
	e.currentMethod = name
}

// MethodArgs returns the original method arguments (for super without args).
func (e *Environment) MethodArgs() []Object {
	return e.methodArgs
}

// SetMethodArgs sets the original method arguments.
func (e *Environment) SetMethodArgs(args []Object) {
	e.methodArgs = args
}

// DefiningClass returns the class where the current method is defined.
func (e *Environment) DefiningClass() *RubyClass {
	return e.definingClass
}

// SetDefiningClass sets the class where the current method is defined.
func (e *Environment) SetDefiningClass(class *RubyClass) {
	e.definingClass = class
}

// CurrentVisibility returns the current visibility for method definitions.
func (e *Environment) CurrentVisibility() MethodVisibility {
	if e.visibilitySet {
		return e.currentVisibility
	}
	return VisibilityPublic
}

// SetCurrentVisibility sets the current visibility for method definitions.
func (e *Environment) SetCurrentVisibility(v MethodVisibility) {
	e.currentVisibility = v
	e.visibilitySet = true
}

// LocalVariableNames returns a list of all local variable names in this environment.
func (e *Environment) LocalVariableNames() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	return names
}

