package vision

import (
	"fmt"
	"image"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Umbrales de deteccion. Fijos para que los resultados sean reproducibles;
// no forman parte del contrato externo.
const (
	faceScaleFactor  = 1.1
	faceMinNeighbors = 5
	faceMinSize      = 50

	eyeScaleFactor  = 1.1
	eyeMinNeighbors = 5

	smileScaleFactor  = 1.8
	smileMinNeighbors = 20
)

const (
	faceCascadeFile  = "haarcascade_frontalface_default.xml"
	eyeCascadeFile   = "haarcascade_eye.xml"
	smileCascadeFile = "haarcascade_smile.xml"
)

// HaarDetector implementa Detector con los clasificadores Haar frontales de
// OpenCV: rostro, ojos y sonrisa.
type HaarDetector struct {
	face  gocv.CascadeClassifier
	eye   gocv.CascadeClassifier
	smile gocv.CascadeClassifier
}

// NewHaarDetector carga los tres clasificadores desde el directorio de
// cascadas (p. ej. /usr/share/opencv4/haarcascades).
func NewHaarDetector(cascadeDir string) (*HaarDetector, error) {
	d := &HaarDetector{
		face:  gocv.NewCascadeClassifier(),
		eye:   gocv.NewCascadeClassifier(),
		smile: gocv.NewCascadeClassifier(),
	}

	load := func(c *gocv.CascadeClassifier, name string) error {
		path := filepath.Join(cascadeDir, name)
		if !c.Load(path) {
			return fmt.Errorf("load cascade %s", path)
		}
		return nil
	}

	if err := load(&d.face, faceCascadeFile); err != nil {
		d.Close()
		return nil, err
	}
	if err := load(&d.eye, eyeCascadeFile); err != nil {
		d.Close()
		return nil, err
	}
	if err := load(&d.smile, smileCascadeFile); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Close libera los clasificadores nativos.
func (d *HaarDetector) Close() {
	d.face.Close()
	d.eye.Close()
	d.smile.Close()
}

// Detect decodifica la imagen, corre la cascada de rostros sobre la version
// en escala de grises y, por cada rostro, detecta ojos y sonrisas dentro de
// su region y mide media y desviacion estandar de intensidad.
func (d *HaarDetector) Detect(imageBytes []byte) (Observation, error) {
	img, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return Observation{}, fmt.Errorf("imdecode: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return Observation{}, fmt.Errorf("imdecode: empty mat")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	obs := Observation{
		ImageWidth:  img.Cols(),
		ImageHeight: img.Rows(),
	}

	faces := d.face.DetectMultiScaleWithParams(
		gray,
		faceScaleFactor,
		faceMinNeighbors,
		0,
		image.Pt(faceMinSize, faceMinSize),
		image.Pt(0, 0),
	)

	for _, box := range faces {
		region := gray.Region(box)

		eyes := d.eye.DetectMultiScaleWithParams(
			region, eyeScaleFactor, eyeMinNeighbors, 0, image.Pt(0, 0), image.Pt(0, 0),
		)
		smiles := d.smile.DetectMultiScaleWithParams(
			region, smileScaleFactor, smileMinNeighbors, 0, image.Pt(0, 0), image.Pt(0, 0),
		)

		mean := gocv.NewMat()
		stddev := gocv.NewMat()
		gocv.MeanStdDev(region, &mean, &stddev)
		brightness := mean.GetDoubleAt(0, 0)
		contrast := stddev.GetDoubleAt(0, 0)
		mean.Close()
		stddev.Close()
		region.Close()

		obs.Faces = append(obs.Faces, Face{
			Box:          box,
			Eyes:         eyes,
			SmileMatches: len(smiles),
			Brightness:   brightness,
			Contrast:     contrast,
		})
	}

	return obs, nil
}
