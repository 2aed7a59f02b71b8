package prep

// Dataset is a partition after min-max scaling, with the fitted scalers
type Dataset struct {
	Scaled   Partition
	Features *MinMaxScaler
	Label    *MinMaxScaler
}

// ScalePartition fits both scalers on Train only and applies them to every segment
func ScalePartition(p Partition) Dataset {
	fx := FitMinMax(p.Train.X)
	fy := FitMinMaxVector(p.Train.Y)

	apply := func(s Segment) Segment {
		return Segment{
			X:     fx.Transform(s.X),
			Y:     fy.TransformVector(s.Y),
			Start: s.Start,
			End:   s.End,
		}
	}

	return Dataset{
		Scaled: Partition{
			Train:      apply(p.Train),
			Validation: apply(p.Validation),
			Test:       apply(p.Test),
		},
		Features: fx,
		Label:    fy,
	}
}
