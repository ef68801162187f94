package sheetcalc

// builtinFunctions returns the function set every evaluator starts with.
// The minimal built-ins cover the aggregates and IF; anything further
// arrives through WithFunction or a function pack.
func builtinFunctions() map[string]Function {
	return map[string]Function{
		"SUM":     fnSum,
		"AVERAGE": fnAverage,
		"COUNT":   fnCount,
		"MAX":     fnMax,
		"MIN":     fnMin,
		"IF":      fnIf,
	}
}

// flatten expands range arguments row-major into a single list of
// values, keeping scalar arguments in place.
func flatten(args []Arg) []Value {
	var out []Value
	for _, a := range args {
		if a.Range {
			for _, row := range a.Values {
				out = append(out, row...)
			}
			continue
		}
		out = append(out, a.Value)
	}
	return out
}

// numericValues keeps the flattened values with a numeric reading;
// everything else is skipped rather than failing the aggregate.
func numericValues(args []Arg) []float64 {
	var nums []float64
	for _, v := range flatten(args) {
		if n, ok := v.AsNumber(); ok {
			nums = append(nums, n)
		}
	}
	return nums
}

func fnSum(args []Arg) (Value, error) {
	total := 0.0
	for _, n := range numericValues(args) {
		total += n
	}
	return Number(total), nil
}

func fnAverage(args []Arg) (Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return Empty, evalErrorf(ErrDiv0, "average of no numeric values")
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return Number(total / float64(len(nums))), nil
}

// fnCount counts entries that are neither empty cells nor empty text.
func fnCount(args []Arg) (Value, error) {
	count := 0
	for _, v := range flatten(args) {
		if v.IsEmpty() || v.Kind == KindText && v.Str == "" {
			continue
		}
		count++
	}
	return Number(float64(count)), nil
}

func fnMax(args []Arg) (Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return Number(0), nil
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if n > best {
			best = n
		}
	}
	return Number(best), nil
}

func fnMin(args []Arg) (Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return Number(0), nil
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if n < best {
			best = n
		}
	}
	return Number(best), nil
}

// fnIf selects its branch after every argument has already been
// evaluated; a missing branch reads as Empty.
func fnIf(args []Arg) (Value, error) {
	if len(args) == 0 {
		return Empty, evalErrorf(ErrValue, "IF needs a condition")
	}
	cond, ok := args[0].Scalar()
	if !ok {
		return Empty, evalErrorf(ErrValue, "range used as a scalar")
	}
	pick := 2
	if cond.IsTruthy() {
		pick = 1
	}
	if pick >= len(args) {
		return Empty, nil
	}
	v, ok := args[pick].Scalar()
	if !ok {
		return Empty, evalErrorf(ErrValue, "range used as a scalar")
	}
	return v, nil
}
