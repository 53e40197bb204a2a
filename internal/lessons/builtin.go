package lessons

func s(amp, freq, phase float64) Term { return Term{Wave: Sin, Amp: amp, Freq: freq, Phase: phase} }
func c(amp, freq, phase float64) Term { return Term{Wave: Cos, Amp: amp, Freq: freq, Phase: phase} }

func count(id string, label Text, lo, hi, base float64, terms ...Term) MetricDef {
	return MetricDef{ID: id, Label: label, Kind: KindCount, Min: lo, Max: hi, Formula: Formula{Base: base, Terms: terms}}
}

func percent(id string, label Text, base float64, terms ...Term) MetricDef {
	return MetricDef{ID: id, Label: label, Unit: "%", Kind: KindPercent, Min: 0, Max: 100, Formula: Formula{Base: base, Terms: terms}}
}

func scalar(id string, label Text, unit string, lo, hi, base float64, terms ...Term) MetricDef {
	return MetricDef{ID: id, Label: label, Unit: unit, Kind: KindScalar, Min: lo, Max: hi, Formula: Formula{Base: base, Terms: terms}}
}

func flag(id string, label Text, base float64, terms ...Term) MetricDef {
	return MetricDef{ID: id, Label: label, Kind: KindFlag, Min: 0, Max: 1, Formula: Formula{Base: base, Terms: terms}}
}

var (
	lblGuards    = T("Guards active", "Guardas activas")
	lblCleanup   = T("Cleanup overhead", "Coste de limpieza")
	lblResources = T("Resources held", "Recursos retenidos")
	lblExcSafe   = T("Exception safe", "Seguro ante excepciones")

	lblRefCount   = T("Reference count", "Contador de referencias")
	lblWeakCount  = T("Weak references", "Referencias débiles")
	lblMoves      = T("Move operations", "Operaciones de movimiento")
	lblThreadSafe = T("Thread safety", "Seguridad entre hilos")
	lblCycle      = T("Cycle detected", "Ciclo detectado")

	lblDeleterOverhead = T("Deleter overhead", "Coste del deleter")
	lblHandles         = T("Handles", "Manejadores")
	lblPointerBytes    = T("Pointer size", "Tamaño del puntero")
	lblLatency         = T("Cleanup latency", "Latencia de limpieza")

	lblUtilization = T("Pool utilization", "Uso del pool")
	lblAllocs      = T("Allocations/frame", "Reservas/cuadro")
	lblFrag        = T("Fragmentation", "Fragmentación")
	lblExhausted   = T("Pool exhausted", "Pool agotado")

	lblCoverage  = T("Coverage", "Cobertura")
	lblIssues    = T("Issues detected", "Problemas detectados")
	lblSlowdown  = T("Slowdown", "Ralentización")
	lblViolation = T("Violation found", "Violación encontrada")
)

func raiiGuards() *Lesson {
	return &Lesson{
		ID:      "raii_guards",
		Title:   T("RAII and scope guards", "RAII y guardas de ámbito"),
		Summary: T("Destructors release resources when a scope ends, even during unwinding.", "Los destructores liberan recursos al salir del ámbito, incluso durante el desenrollado."),
		Scenarios: []Scenario{
			{
				ID:    "basic_guards",
				Label: T("Basic guards", "Guardas básicas"),
				Metrics: []MetricDef{
					count("guardsActive", lblGuards, 3, 5, 4, s(1, 0.8, 0)),
					scalar("cleanupOverhead", lblCleanup, "µs", 1.3, 3.7, 2.5, c(1.2, 1.3, 0)),
					count("resourcesHeld", lblResources, 0, 10, 5, s(4, 0.6, 1)),
					flag("exceptionSafe", lblExcSafe, 0.8, s(1, 0.4, 0.3)),
				},
			},
			{
				ID:    "nested_scopes",
				Label: T("Nested scopes", "Ámbitos anidados"),
				Metrics: []MetricDef{
					count("guardsActive", lblGuards, 1, 9, 5, s(4, 0.5, 0)),
					scalar("cleanupOverhead", lblCleanup, "µs", 2, 6, 4, s(2, 1.1, 0.4)),
					count("resourcesHeld", lblResources, 0, 10, 4, c(3, 0.7, 0.9)),
					flag("exceptionSafe", lblExcSafe, 0.5, c(1, 0.3, 0)),
				},
			},
			{
				ID:    "exception_unwind",
				Label: T("Exception unwinding", "Desenrollado por excepción"),
				Metrics: []MetricDef{
					count("guardsActive", lblGuards, 0, 5, 2.5, c(2.5, 1.4, 0)),
					scalar("cleanupOverhead", lblCleanup, "µs", 3, 9, 6, s(3, 0.9, 1.2)),
					count("resourcesHeld", lblResources, 0, 10, 3, s(3, 1.2, 0.5)),
					flag("exceptionSafe", lblExcSafe, 0.2, s(1, 0.5, 0.2)),
				},
			},
		},
		Layout: Layout{
			Nodes: []NodeSpec{
				{Name: "scope", Memory: MemoryStack, Size: 2, Spin: 0.01},
				{Name: "guards", Shape: ShapeSphere, Color: "#81c784", Size: 0.4, Replicas: 9, Radius: 3, Spin: 0.005},
				{Name: "resources", Shape: ShapeCube, Memory: MemoryHeap, Size: 0.3, Replicas: 10, Radius: 1.6, Position: [3]float64{0, -1.5, 0}},
				{Name: "halo", Shape: ShapeRing, Color: "#e1bee7", Size: 4},
			},
			Bindings: []Binding{
				{Metric: "guardsActive", Node: "guards", Channel: ChannelReplicas},
				{Metric: "resourcesHeld", Node: "resources", Channel: ChannelReplicas},
				{Metric: "cleanupOverhead", Node: "scope", Channel: ChannelSpin, Gain: 0.04},
				{Metric: "cleanupOverhead", Node: "halo", Channel: ChannelScale, Gain: 0.5, Offset: 0.8},
				{Metric: "exceptionSafe", Node: "halo", Channel: ChannelVisible},
			},
		},
	}
}

func smartPointers() *Lesson {
	return &Lesson{
		ID:      "smart_pointers",
		Title:   T("Smart pointers", "Punteros inteligentes"),
		Summary: T("unique_ptr owns alone, shared_ptr counts owners, weak_ptr observes without owning.", "unique_ptr posee en exclusiva, shared_ptr cuenta dueños y weak_ptr observa sin poseer."),
		Scenarios: []Scenario{
			{
				ID:    "unique_ownership",
				Label: T("Unique ownership", "Propiedad única"),
				Metrics: []MetricDef{
					count("refCount", lblRefCount, 1, 1, 1),
					count("weakCount", lblWeakCount, 0, 0, 0),
					count("moveOperations", lblMoves, 0, 12, 6, s(6, 0.45, 0)),
					percent("threadSafety", lblThreadSafe, 55, s(10, 0.5, 0.7)),
					flag("cycleDetection", lblCycle, -1),
				},
			},
			{
				ID:    "reference_counting",
				Label: T("Reference counting", "Conteo de referencias"),
				Metrics: []MetricDef{
					count("refCount", lblRefCount, 1, 8, 4.5, s(3.5, 0.9, 0)),
					count("weakCount", lblWeakCount, 0, 3, 1.5, c(1.5, 0.7, 0)),
					count("moveOperations", lblMoves, 0, 4, 2, s(2, 0.6, 1.1)),
					percent("threadSafety", lblThreadSafe, 85, s(10, 0.5, 0.7)),
					flag("cycleDetection", lblCycle, 0, c(1, 0.35, 0)),
				},
			},
			{
				ID:    "weak_observers",
				Label: T("Weak observers", "Observadores débiles"),
				Metrics: []MetricDef{
					count("refCount", lblRefCount, 1, 4, 2.5, s(1.5, 0.6, 0)),
					count("weakCount", lblWeakCount, 0, 6, 3, c(3, 0.8, 0.5)),
					count("moveOperations", lblMoves, 0, 2, 1, s(1, 0.4, 0)),
					percent("threadSafety", lblThreadSafe, 90, c(5, 0.4, 0)),
					flag("cycleDetection", lblCycle, 1),
				},
			},
		},
		Layout: Layout{
			Nodes: []NodeSpec{
				{Name: "object", Shape: ShapeSphere, Color: "#64b5f6", Memory: MemoryHeap, Size: 1.2, Spin: 0.01},
				{Name: "owners", Shape: ShapeArrow, Color: "#aed581", Size: 1, Replicas: 8, Radius: 3.2, Spin: 0.004, Pulse: 1},
				{Name: "observers", Shape: ShapeArrow, Color: "#90a4ae", Size: 0.6, Replicas: 6, Radius: 4.2, Position: [3]float64{0, 1, 0}, Spin: -0.006},
				{Name: "controlBlock", Shape: ShapeCube, Memory: MemoryHeap, Size: 0.8, Position: [3]float64{0, 2.2, 0}},
				{Name: "cycle", Shape: ShapeRing, Color: "#e57373", Size: 3},
			},
			Bindings: []Binding{
				{Metric: "refCount", Node: "owners", Channel: ChannelReplicas},
				{Metric: "weakCount", Node: "observers", Channel: ChannelReplicas},
				{Metric: "weakCount", Node: "observers", Channel: ChannelPulse, Gain: 1.5, Offset: 0.25},
				{Metric: "threadSafety", Node: "controlBlock", Channel: ChannelOpacity, Gain: 0.8, Offset: 0.2},
				{Metric: "moveOperations", Node: "object", Channel: ChannelSpin, Gain: 0.05},
				{Metric: "cycleDetection", Node: "cycle", Channel: ChannelVisible},
			},
		},
	}
}

func customDeleters() *Lesson {
	return &Lesson{
		ID:      "custom_deleters",
		Title:   T("Custom deleters", "Deleters personalizados"),
		Summary: T("The deleter type decides how large the smart pointer is and what cleanup costs.", "El tipo del deleter decide el tamaño del puntero y el coste de la limpieza."),
		Scenarios: []Scenario{
			{
				ID:    "function_pointer",
				Label: T("Function pointer", "Puntero a función"),
				Metrics: []MetricDef{
					percent("deleterOverhead", lblDeleterOverhead, 8, s(3, 0.7, 0)),
					count("handleCount", lblHandles, 2, 10, 6, s(4, 0.5, 0.3)),
					count("pointerBytes", lblPointerBytes, 16, 16, 16),
					scalar("cleanupLatency", lblLatency, "µs", 0.2, 1.0, 0.6, c(0.4, 1.1, 0)),
				},
			},
			{
				ID:    "lambda_deleter",
				Label: T("Stateless lambda", "Lambda sin estado"),
				Metrics: []MetricDef{
					percent("deleterOverhead", lblDeleterOverhead, 2, s(1.5, 0.9, 0.6)),
					count("handleCount", lblHandles, 2, 8, 5, c(3, 0.6, 0)),
					count("pointerBytes", lblPointerBytes, 8, 8, 8),
					scalar("cleanupLatency", lblLatency, "µs", 0.1, 0.5, 0.3, s(0.2, 1.3, 0.2)),
				},
			},
			{
				ID:    "stateful_functor",
				Label: T("Stateful functor", "Functor con estado"),
				Metrics: []MetricDef{
					percent("deleterOverhead", lblDeleterOverhead, 15, s(6, 0.55, 1.1)),
					count("handleCount", lblHandles, 1, 7, 4, s(3, 0.8, 0.9)),
					count("pointerBytes", lblPointerBytes, 16, 24, 20, s(4, 0.25, 0)),
					scalar("cleanupLatency", lblLatency, "µs", 0.6, 1.8, 1.2, s(0.6, 0.95, 0)),
				},
			},
		},
		Layout: Layout{
			Nodes: []NodeSpec{
				{Name: "pointer", Shape: ShapeCube, Color: "#4dd0e1", Memory: MemoryStack, Size: 1, Spin: 0.01},
				{Name: "handles", Shape: ShapeCube, Color: "#a1887f", Memory: MemoryHeap, Size: 0.35, Replicas: 10, Radius: 2.8, Spin: 0.006},
				{Name: "deleter", Shape: ShapeSphere, Color: "#f06292", Memory: MemoryGlobal, Size: 0.8, Position: [3]float64{2, 0, 0}},
				{Name: "latency", Shape: ShapeArrow, Color: "#fff176", Size: 1.5, Pulse: 0.8, Position: [3]float64{-2, 0, 0}},
			},
			Bindings: []Binding{
				{Metric: "handleCount", Node: "handles", Channel: ChannelReplicas},
				{Metric: "pointerBytes", Node: "pointer", Channel: ChannelScale, Gain: 0.6, Offset: 0.8},
				{Metric: "deleterOverhead", Node: "deleter", Channel: ChannelScale, Gain: 1.5, Offset: 0.5},
				{Metric: "cleanupLatency", Node: "latency", Channel: ChannelHeight, Gain: 2, Offset: -1},
			},
		},
	}
}

func memoryPools() *Lesson {
	return &Lesson{
		ID:      "memory_pools",
		Title:   T("Memory pools", "Pools de memoria"),
		Summary: T("Pre-allocated blocks trade flexibility for predictable allocation cost.", "Los bloques prerreservados cambian flexibilidad por un coste de reserva predecible."),
		Scenarios: []Scenario{
			{
				ID:    "fixed_block",
				Label: T("Fixed-size blocks", "Bloques de tamaño fijo"),
				Metrics: []MetricDef{
					percent("poolUtilization", lblUtilization, 60, s(30, 0.4, 0)),
					count("allocationsPerFrame", lblAllocs, 0, 64, 32, s(24, 1.1, 0.5)),
					percent("fragmentation", lblFrag, 5, s(4, 0.7, 1)),
					flag("poolExhausted", lblExhausted, -0.95, s(1, 0.4, 0)),
				},
			},
			{
				ID:    "arena",
				Label: T("Arena allocator", "Asignador de arena"),
				Metrics: []MetricDef{
					percent("poolUtilization", lblUtilization, 50, s(45, 0.3, 0.2)),
					count("allocationsPerFrame", lblAllocs, 0, 64, 40, c(20, 0.9, 0)),
					percent("fragmentation", lblFrag, 2, s(1, 0.5, 0)),
					flag("poolExhausted", lblExhausted, -0.98, s(1, 0.3, 0.2)),
				},
			},
			{
				ID:    "free_list",
				Label: T("Free list", "Lista libre"),
				Metrics: []MetricDef{
					percent("poolUtilization", lblUtilization, 70, s(20, 0.5, 0.8)),
					count("allocationsPerFrame", lblAllocs, 0, 64, 20, s(15, 1.3, 0)),
					percent("fragmentation", lblFrag, 25, s(15, 0.6, 0.4)),
					flag("poolExhausted", lblExhausted, -0.9, s(1, 0.5, 0.8)),
				},
			},
		},
		Layout: Layout{
			Nodes: []NodeSpec{
				{Name: "pool", Shape: ShapeCube, Color: "#7986cb", Memory: MemoryHeap, Size: 3, Spin: 0.005},
				{Name: "fill", Shape: ShapeCube, Color: "#4db6ac", Size: 2.6, Parent: "pool"},
				{Name: "fragments", Shape: ShapeSphere, Color: "#ff8a65", Size: 0.25, Replicas: 12, Radius: 2.4, Spin: 0.02},
				{Name: "alarm", Shape: ShapeRing, Color: "#ef5350", Size: 4.5},
			},
			Bindings: []Binding{
				{Metric: "poolUtilization", Node: "fill", Channel: ChannelScale, Gain: 1, Offset: 0},
				{Metric: "allocationsPerFrame", Node: "pool", Channel: ChannelSpin, Gain: 0.03},
				{Metric: "fragmentation", Node: "fragments", Channel: ChannelOpacity, Gain: 1, Offset: 0.1},
				{Metric: "poolExhausted", Node: "alarm", Channel: ChannelVisible},
			},
		},
	}
}

func sanitizers() *Lesson {
	return &Lesson{
		ID:      "sanitizers",
		Title:   T("Sanitizers", "Sanitizadores"),
		Summary: T("Instrumented builds catch memory errors at runtime at a measurable cost.", "Las compilaciones instrumentadas detectan errores de memoria en ejecución con un coste medible."),
		Scenarios: []Scenario{
			{
				ID:    "address_sanitizer",
				Label: T("AddressSanitizer", "AddressSanitizer"),
				Metrics: []MetricDef{
					percent("coverage", lblCoverage, 80, s(15, 0.35, 0)),
					count("issuesDetected", lblIssues, 0, 5, 2.5, s(2.5, 0.75, 0.4)),
					scalar("slowdownFactor", lblSlowdown, "x", 1, 4, 2, s(0.5, 0.5, 0)),
					flag("violationFound", lblViolation, -0.3, s(1, 0.75, 0.4)),
				},
			},
			{
				ID:    "undefined_behavior",
				Label: T("UndefinedBehaviorSanitizer", "UndefinedBehaviorSanitizer"),
				Metrics: []MetricDef{
					percent("coverage", lblCoverage, 70, c(20, 0.45, 0.3)),
					count("issuesDetected", lblIssues, 0, 3, 1.5, s(1.5, 0.9, 0)),
					scalar("slowdownFactor", lblSlowdown, "x", 1, 4, 1.2, s(0.15, 0.6, 0)),
					flag("violationFound", lblViolation, -0.5, s(1, 0.9, 0)),
				},
			},
			{
				ID:    "leak_sanitizer",
				Label: T("LeakSanitizer", "LeakSanitizer"),
				Metrics: []MetricDef{
					percent("coverage", lblCoverage, 90, s(8, 0.25, 1)),
					count("issuesDetected", lblIssues, 0, 6, 3, s(3, 0.5, 0.6)),
					scalar("slowdownFactor", lblSlowdown, "x", 1, 4, 1.1, c(0.05, 0.8, 0)),
					flag("violationFound", lblViolation, 0, s(1, 0.5, 0.6)),
				},
			},
		},
		Layout: Layout{
			Nodes: []NodeSpec{
				{Name: "heap", Memory: MemoryHeap, Color: "#9575cd", Size: 2, Spin: 0.008},
				{Name: "shadow", Shape: ShapeRing, Color: "#b0bec5", Size: 3.5, Spin: -0.01},
				{Name: "findings", Shape: ShapeSphere, Color: "#e53935", Size: 0.3, Replicas: 6, Radius: 2.6, Spin: 0.015},
				{Name: "probe", Shape: ShapeArrow, Color: "#fdd835", Size: 1.2, Pulse: 1.5, Position: [3]float64{0, 3, 0}},
			},
			Bindings: []Binding{
				{Metric: "coverage", Node: "shadow", Channel: ChannelOpacity, Gain: 1, Offset: 0},
				{Metric: "issuesDetected", Node: "findings", Channel: ChannelReplicas},
				{Metric: "slowdownFactor", Node: "heap", Channel: ChannelSpin, Gain: -0.006},
				{Metric: "violationFound", Node: "probe", Channel: ChannelVisible},
			},
		},
	}
}

// Builtin returns fresh copies of the lessons shipped with the binary.
func Builtin() []*Lesson {
	return []*Lesson{raiiGuards(), smartPointers(), customDeleters(), memoryPools(), sanitizers()}
}
