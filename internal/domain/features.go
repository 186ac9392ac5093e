package domain

// FaceBox es el rectangulo del rostro detectado en coordenadas de la imagen original.
type FaceBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area devuelve el area del rectangulo en pixeles.
func (b FaceBox) Area() int {
	return b.Width * b.Height
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FeatureVector reune las medidas geometricas y de intensidad derivadas de
// exactamente un rostro detectado. Es inmutable una vez construido: solo el
// extractor lo crea, y solo cuando la deteccion encontro un unico rostro.
type FeatureVector struct {
	FaceBox       FaceBox `json:"face_box"`
	FaceAreaRatio float64 `json:"face_area_ratio"` // area rostro / area imagen, en (0,1]

	// EyeDistance y EyeSymmetry solo existen con dos o mas ojos detectados.
	// Se derivan de los dos primeros rectangulos en orden del detector; ese
	// orden no esta garantizado entre implementaciones y lo aceptamos como
	// aproximacion.
	EyeCount    int      `json:"eye_count"`
	EyeDistance *float64 `json:"eye_distance,omitempty"`
	EyeSymmetry *float64 `json:"eye_symmetry,omitempty"`

	SmileDetected  bool `json:"smile_detected"`
	SmileIntensity int  `json:"smile_intensity"` // cantidad de coincidencias del patron de sonrisa

	FaceWidthHeightRatio float64 `json:"face_width_height_ratio"` // 0 si la altura es 0
	Brightness           float64 `json:"brightness"`              // media de intensidad en la region del rostro
	Contrast             float64 `json:"contrast"`                // desviacion estandar de intensidad
	FaceCenter           Point   `json:"face_center"`
}
