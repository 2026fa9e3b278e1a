package renderer

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec4 aColor;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat3 uNormalMatrix;

out vec3 vNormal;
out vec4 vColor;

void main() {
	vNormal = normalize(uNormalMatrix * aNormal);
	vColor = aColor;
	gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
}
`

// Hemispheric lighting: sky colour on surfaces facing the light direction,
// ground colour on surfaces facing away.
const meshFragmentShader = `
#version 410 core

in vec3 vNormal;
in vec4 vColor;

uniform vec3 uLightDir;
uniform vec3 uSkyColor;
uniform vec3 uGroundColor;
uniform float uIntensity;

out vec4 FragColor;

void main() {
	float w = 0.5 * dot(normalize(vNormal), uLightDir) + 0.5;
	vec3 light = mix(uGroundColor, uSkyColor, w) * uIntensity;
	FragColor = vec4(vColor.rgb * light, vColor.a);
}
`

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vColor;

void main() {
	vColor = aColor;
	gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vColor, 1.0);
}
`
