// Package vision define el contrato de deteccion facial y su implementacion
// con clasificadores Haar de OpenCV.
package vision

import "image"

// Face es la observacion cruda de un rostro: el rectangulo en coordenadas de
// la imagen completa, los ojos y sonrisas detectados dentro de ese rectangulo
// (coordenadas locales al rostro) y las estadisticas de intensidad de la
// region.
type Face struct {
	Box          image.Rectangle
	Eyes         []image.Rectangle // orden del detector, sin garantia de seleccion
	SmileMatches int
	Brightness   float64
	Contrast     float64
}

// Observation es el resultado de correr deteccion sobre una imagen ya
// validada.
type Observation struct {
	ImageWidth  int
	ImageHeight int
	Faces       []Face
}

// Detector corre deteccion facial sobre bytes de imagen. Un error aqui
// significa que la imagen no pudo procesarse, no que no haya rostros.
type Detector interface {
	Detect(imageBytes []byte) (Observation, error)
}
