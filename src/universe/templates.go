package universe

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string  `yaml:"name"`
	Descr       string  `yaml:"descr"`
	Coordinates [][]int `yaml:"coordinates"` //array of [x,y] coordinates
}

//BuiltinTemplates returns the templates every runner starts with
func BuiltinTemplates() []Template {
	return []Template{
		{
			"testSample1",
			"the test sample with 3 stable patterns",
			[][]int{
				{1, 1}, {1, 2},
				{2, 1}, {2, 2},
				{3, 3},
				{4, 2},
				{4, 3},
				{5, 3},
			},
		},
		{"blinker", "period 2 oscillator", [][]int{{1, 0}, {1, 1}, {1, 2}}},
		{"block", "still life", [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
		{"glider", "moves one cell diagonally every 4 steps", [][]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}},
		{"corner", "settles into a block in the top right corner of a 4x4 field", [][]int{{1, 0}, {3, 0}, {2, 1}, {3, 1}}},
		{"fade", "dies out after 3 steps on a 4x4 field", [][]int{{1, 0}, {2, 0}, {3, 1}, {1, 2}, {2, 2}}},
	}
}

//Size returns the bounding box of the template counted from the origin
func (t Template) Size() (width int, height int) {
	for _, v := range t.Coordinates {
		if len(v) < 2 {
			continue
		}
		if v[0]+1 > width {
			width = v[0] + 1
		}
		if v[1]+1 > height {
			height = v[1] + 1
		}
	}
	return
}

//Rows renders the template inside a width x height field with '#' for alive and '.' for dead cells
//coordinates outside the field are dropped
func (t Template) Rows(width int, height int) []string {
	field := make([][]byte, height)
	for y := range field {
		field[y] = make([]byte, width)
		for x := range field[y] {
			field[y][x] = '.'
		}
	}
	for _, v := range t.Coordinates {
		if len(v) < 2 || v[0] < 0 || v[1] < 0 || v[0] >= width || v[1] >= height {
			continue
		}
		field[v[1]][v[0]] = '#'
	}
	rows := make([]string, height)
	for y := range field {
		rows[y] = string(field[y])
	}
	return rows
}
