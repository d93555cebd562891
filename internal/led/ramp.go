package led

import "math"

// Timing constants for the breathing ramp and the settle protocol.
const (
	// kernelDelayMs approximates the duration of the kernel delayed work
	// triggered by a sysfs write; consecutive control writes closer than
	// this can get silently dropped on some devices.
	kernelDelayMs = 10

	// stepDelayMinMs is the minimum delay between breathing steps.
	stepDelayMinMs = 50

	// rampMaxSteps caps rise and fall time combined.
	rampMaxSteps = 256

	// rampMinSteps is the minimum number of steps on rise/fall time.
	rampMinSteps = 5
)

// ramp is a precomputed intensity curve consumed one value per breathing
// tick. It is regenerated whole on every breath transition, never mutated
// in place.
type ramp struct {
	values  [rampMaxSteps]uint8
	steps   int
	delayMs int
	cursor  int
}

// clear invalidates the curve so the settle logic falls back to a static
// apply.
func (rp *ramp) clear() {
	rp.steps = 0
	rp.delayMs = 0
}

// generateHalfSine fills the ramp with a smooth 0..255..0 curve: a quarter
// sine rise over the on period and a quarter sine fall over the off period.
func (rp *ramp) generateHalfSine(onMs, offMs int) {
	total := onMs + offMs

	delay := (total + rampMaxSteps - 1) / rampMaxSteps
	if delay < stepDelayMinMs {
		delay = stepDelayMinMs
	}
	steps := (total + delay - 1) / delay

	stepsOn := (steps*onMs + total/2) / total
	stepsOff := steps - stepsOn

	k := 0
	for i := 0; i < stepsOn; i++ {
		a := float64(i) * math.Pi / 2 / float64(stepsOn)
		rp.values[k] = uint8(math.Sin(a) * 255)
		k++
	}
	for i := 0; i < stepsOff; i++ {
		a := math.Pi/2 + float64(i)*math.Pi/2/float64(stepsOff)
		rp.values[k] = uint8(math.Sin(a) * 255)
		k++
	}

	rp.delayMs = delay
	rp.steps = k
}

// generateHardStep fills the ramp with a full-on/full-off step curve. This
// approximates hardware blinking with periodic brightness writes only, for
// backends that have no native blink control. The wakeup pace is the
// greatest common divisor of the (rounded up) on/off periods so that both
// edges land exactly on a step boundary.
func (rp *ramp) generateHardStep(onMs, offMs int) {
	// Round up the periods to avoid bizarre timings causing an excessive
	// number of timer wakeups.
	onMs = roundUp(onMs, 100)
	offMs = roundUp(offMs, 100)

	total := onMs + offMs

	step := gcd(onMs, offMs)
	if step < stepDelayMinMs {
		step = stepDelayMinMs
	}

	steps := (total + step - 1) / step
	if steps > rampMaxSteps {
		steps = rampMaxSteps
		step = (total + steps - 1) / steps
		if step < stepDelayMinMs {
			step = stepDelayMinMs
		}
	}

	stepsOn := (onMs + step - 1) / step

	i := 0
	for ; i < stepsOn; i++ {
		rp.values[i] = 255
	}
	for ; i < steps; i++ {
		rp.values[i] = 0
	}

	rp.delayMs = step
	rp.steps = steps
}

// ScaleValue maps in from the 0..255 range onto 0..max, preserving the
// zero/nonzero nature of the input.
func ScaleValue(in, max int) int {
	if in <= 0 {
		return 0
	}
	return 1 + (in-1)*(max-1)/254
}

// gcd returns the greatest common divisor of two integers, never zero.
func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a < b {
		a, b = b, a
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// roundUp rounds val up to the next multiple of step.
func roundUp(val, step int) int {
	if extra := val % step; extra != 0 {
		val += step - extra
	}
	return val
}
