package escapetime

// View is a named window into the complex plane: the centre of the square
// region and its full side length.
type View struct {
	Centre complex128
	Extent float64
}

// Classic Julia constants. Swap these into Params.C to see well-known sets.
var (
	// Basilica – two large lobes joined at a pinch point
	Basilica = complex(-1, 0)

	// Douady Rabbit – three-eared bulb structure
	DouadyRabbit = complex(-0.123, 0.745)

	// Dendrite – tree-like filaments with no interior
	Dendrite = complex(0, 1)

	// San Marco – cathedral-dome outline along the real axis
	SanMarco = complex(-0.75, 0)

	// Siegel Disk – orbit rotates on an invariant disk
	SiegelDisk = complex(-0.390541, -0.586788)

	// Whisker – thin filaments radiating from the real axis, c = -i
	Whisker = complex(0, -1)
)

// Classic views / landmarks in the Mandelbrot set
var (
	// FullSet – the whole Mandelbrot set with some margin
	FullSet = View{Centre: complex(-0.5, 0), Extent: 3.0}

	// SeahorseValley – dense filaments and repeating “seahorse” curls
	SeahorseValley = View{Centre: complex(-0.75, 0.1), Extent: 0.1}

	// ElephantValley – large bulb with trunk-like tendrils
	ElephantValley = View{Centre: complex(-1.8, -0.06), Extent: 0.1}

	// SpiralMinibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = View{Centre: complex(-0.74275, 0.13175), Extent: 0.0015}

	// TripleSpiral – threefold symmetric spiral structure
	TripleSpiral = View{Centre: complex(-0.7465, 0.0965), Extent: 0.003}

	// ValleyOfTheDragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = View{Centre: complex(-0.7375, 0.1825), Extent: 0.005}

	// MinibrotInMiniSpiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = View{Centre: complex(-1.73825, -0.02275), Extent: 0.0015}
)

// JuliaConstants maps preset names usable on the command line to Julia
// constants.
var JuliaConstants = map[string]complex128{
	"basilica": Basilica,
	"rabbit":   DouadyRabbit,
	"dendrite": Dendrite,
	"sanmarco": SanMarco,
	"siegel":   SiegelDisk,
	"whisker":  Whisker,
}

// MandelbrotViews maps preset names to Mandelbrot landmark views.
var MandelbrotViews = map[string]View{
	"full":       FullSet,
	"seahorse":   SeahorseValley,
	"elephant":   ElephantValley,
	"minibrot":   SpiralMinibrot,
	"triple":     TripleSpiral,
	"dragon":     ValleyOfTheDragon,
	"minispiral": MinibrotInMiniSpiral,
}
