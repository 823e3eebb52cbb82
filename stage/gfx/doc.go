// Package gfx is the software 3D engine behind the frost viewer.
//
// It covers what a small scene needs: meshes with Euler transforms, a perspective
// camera, a single directional light, textures sampled by UV, primitive geometry
// (box, sphere, plane) and an orbit controller.
//
// Pipeline (fixed):
//
//	Scene → Transform → Projection → Clipping → Rasterization → Target.
//
// The renderer is software-only and draws into a caller-provided Target. It keeps
// its depth buffer between frames and does not allocate in the per-triangle path.
package gfx
